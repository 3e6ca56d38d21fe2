// Package memory is an in-process ledger store used for tests and for the
// memory data backend.
package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"finances/internal/core"
	"finances/internal/ledger"
	"github.com/shopspring/decimal"
)

var defaultCategories = []string{"Food", "Housing", "Transport"}

type Store struct {
	mu         sync.Mutex
	profiles   map[string]core.UserProfile
	categories map[int64]string
	items      []core.Transaction
	nextTxID   int64
	nextCatID  int64
}

var _ ledger.Store = (*Store)(nil)

func New(categories []string) *Store {
	s := &Store{
		profiles:   make(map[string]core.UserProfile),
		categories: make(map[int64]string),
	}
	for _, name := range dedupe(categories) {
		s.nextCatID++
		s.categories[s.nextCatID] = name
	}
	return s
}

// NewFromFiles seeds categories from base/seed_categories.txt, falling back
// to a small default set when the file is missing or empty.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = defaultCategories
	}
	return New(cats)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) FindUserProfile(_ context.Context, userID string) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return core.UserProfile{}, core.ErrProfileNotFound
	}
	return p, nil
}

func (s *Store) CreateUserProfile(_ context.Context, userID string) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; ok {
		return core.UserProfile{}, core.ErrProfileExists
	}
	p := core.UserProfile{ID: userID, BudgetLimit: core.FromCents(0)}
	s.profiles[userID] = p
	return p, nil
}

func (s *Store) UpdateBudgetLimit(_ context.Context, userID string, limit decimal.Decimal) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return core.UserProfile{}, core.ErrProfileNotFound
	}
	p.BudgetLimit = limit
	s.profiles[userID] = p
	return p, nil
}

func (s *Store) QueryTransactions(_ context.Context, f ledger.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := core.FoldName(f.NameContains)
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.OwnerID != f.OwnerID {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && tx.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && tx.Date.After(f.To) {
			continue
		}
		if needle != "" && !strings.Contains(core.FoldName(tx.Name), needle) {
			continue
		}
		out = append(out, s.withCategory(tx))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			if f.NewestFirst {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		if f.NewestFirst {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) InsertTransaction(_ context.Context, in core.NewTransaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[in.OwnerID]; !ok {
		return core.Transaction{}, core.ErrProfileNotFound
	}
	if in.CategoryID != nil {
		if _, ok := s.categories[*in.CategoryID]; !ok {
			return core.Transaction{}, core.ErrCategoryNotFound
		}
	}
	s.nextTxID++
	tx := core.Transaction{
		ID:          s.nextTxID,
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Date:        in.Date,
		Amount:      in.Amount,
		Type:        in.Type,
		CategoryID:  copyID(in.CategoryID),
		FromAccount: in.FromAccount,
		Note:        in.Note,
	}
	s.items = append(s.items, tx)
	return s.withCategory(tx), nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id && tx.OwnerID == ownerID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (s *Store) FindCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return core.Category{ID: id, Name: name}, nil
}

func (s *Store) ListCategories(context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for id, name := range s.categories {
		out = append(out, core.Category{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCatID++
	s.categories[s.nextCatID] = name
	return core.Category{ID: s.nextCatID, Name: name}, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.ErrCategoryNotFound
	}
	delete(s.categories, id)
	for i := range s.items {
		if s.items[i].CategoryID != nil && *s.items[i].CategoryID == id {
			s.items[i].CategoryID = nil
		}
	}
	return nil
}

// withCategory resolves the category name. Callers must hold s.mu.
func (s *Store) withCategory(tx core.Transaction) core.Transaction {
	tx.CategoryID = copyID(tx.CategoryID)
	tx.CategoryName = ""
	if tx.CategoryID != nil {
		tx.CategoryName = s.categories[*tx.CategoryID]
	}
	return tx
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, preserving input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
