package services

import (
	"context"

	"finances/internal/core"
	"finances/internal/ledger"
)

// ProfileService provisions user profiles and maintains their budget limit.
type ProfileService struct {
	store ledger.ProfileStore
	retry RetryPolicy
}

func NewProfileService(store ledger.ProfileStore, retry RetryPolicy) *ProfileService {
	return &ProfileService{store: store, retry: retry}
}

func (s *ProfileService) CreateProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	if err := core.ValidateUserID(userID); err != nil {
		return core.UserProfile{}, err
	}
	return s.store.CreateUserProfile(ctx, userID)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	return withRetry(ctx, s.retry, "find_user_profile", func(ctx context.Context) (core.UserProfile, error) {
		return s.store.FindUserProfile(ctx, userID)
	})
}

// UpdateBudgetLimit parses raw like a transaction amount and stores it.
func (s *ProfileService) UpdateBudgetLimit(ctx context.Context, userID, raw string) (core.UserProfile, error) {
	limit, err := core.ParseAmount(raw)
	if err != nil {
		return core.UserProfile{}, core.NewValidationError("budget_limit", err.Error())
	}
	return s.store.UpdateBudgetLimit(ctx, userID, limit)
}
