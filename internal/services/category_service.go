package services

import (
	"context"
	"errors"
	"fmt"

	"finances/internal/cache"
	"finances/internal/core"
	"finances/internal/ledger"
)

const categoriesKey = "categories"

// CategoryService manages the shared category catalog. Listings are cached
// and every write invalidates the cache.
type CategoryService struct {
	store ledger.CategoryStore
	cache cache.Cache[[]core.Category]
	retry RetryPolicy
}

// NewCategoryService accepts a nil cache, in which case every listing hits
// the store.
func NewCategoryService(store ledger.CategoryStore, c cache.Cache[[]core.Category], retry RetryPolicy) *CategoryService {
	return &CategoryService{store: store, cache: c, retry: retry}
}

// ListCategories returns every category ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]core.Category, error) {
	if s.cache != nil {
		if cats, ok := s.cache.Get(categoriesKey); ok {
			return append([]core.Category(nil), cats...), nil
		}
	}
	cats, err := withRetry(ctx, s.retry, "list_categories", s.store.ListCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(categoriesKey, cats)
	}
	return append([]core.Category(nil), cats...), nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	name, err := core.ValidateCategoryName(name)
	if err != nil {
		return core.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.invalidate()
	return c, nil
}

// DeleteCategory removes the category; its transactions become
// uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate()
	return nil
}

func (s *CategoryService) invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
