package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finances/internal/core"
	"finances/internal/ledger"
)

func newTx(owner, name string, date core.Date, cents int64, typ core.TransactionType, cat *int64) core.NewTransaction {
	return core.NewTransaction{
		OwnerID:     owner,
		Name:        name,
		Date:        date,
		Amount:      core.FromCents(cents),
		Type:        typ,
		CategoryID:  cat,
		FromAccount: "checking",
	}
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	if _, err := s.FindUserProfile(ctx, "u1"); !errors.Is(err, core.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}
	p, err := s.CreateUserProfile(ctx, "u1")
	if err != nil || p.ID != "u1" || !p.BudgetLimit.IsZero() {
		t.Fatalf("unexpected create: %+v err=%v", p, err)
	}
	if _, err := s.CreateUserProfile(ctx, "u1"); !errors.Is(err, core.ErrProfileExists) {
		t.Fatalf("expected profile exists, got %v", err)
	}
	p, err = s.UpdateBudgetLimit(ctx, "u1", core.FromCents(50000))
	if err != nil || core.ToCents(p.BudgetLimit) != 50000 {
		t.Fatalf("unexpected update: %+v err=%v", p, err)
	}
	if _, err := s.UpdateBudgetLimit(ctx, "u2", core.FromCents(1)); !errors.Is(err, core.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}
}

func TestInsertChecksOwnerAndCategory(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Food"})
	day := core.NewDate(2024, 5, 1)

	if _, err := s.InsertTransaction(ctx, newTx("ghost", "a", day, 100, core.Expense, nil)); !errors.Is(err, core.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}
	s.CreateUserProfile(ctx, "u1")

	missing := int64(99)
	if _, err := s.InsertTransaction(ctx, newTx("u1", "a", day, 100, core.Expense, &missing)); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
	txs, _ := s.QueryTransactions(ctx, ledger.TransactionFilter{OwnerID: "u1"})
	if len(txs) != 0 {
		t.Fatalf("failed insert must not persist, got %v", txs)
	}

	food := int64(1)
	tx, err := s.InsertTransaction(ctx, newTx("u1", "a", day, 100, core.Expense, &food))
	if err != nil || tx.ID != 1 || tx.CategoryName != "Food" {
		t.Fatalf("unexpected insert: %+v err=%v", tx, err)
	}
}

func TestQueryFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.CreateUserProfile(ctx, "u1")
	s.CreateUserProfile(ctx, "u2")

	s.InsertTransaction(ctx, newTx("u1", "Coffee", core.NewDate(2024, 5, 3), 300, core.Expense, nil))
	s.InsertTransaction(ctx, newTx("u1", "Salary", core.NewDate(2024, 5, 1), 100000, core.Income, nil))
	s.InsertTransaction(ctx, newTx("u1", "coffee beans", core.NewDate(2024, 5, 3), 1200, core.Expense, nil))
	s.InsertTransaction(ctx, newTx("u2", "Coffee", core.NewDate(2024, 5, 3), 300, core.Expense, nil))

	asc, _ := s.QueryTransactions(ctx, ledger.TransactionFilter{OwnerID: "u1"})
	if len(asc) != 3 || asc[0].Name != "Salary" || asc[1].ID != 1 || asc[2].ID != 3 {
		t.Fatalf("unexpected ascending order: %+v", asc)
	}

	desc, _ := s.QueryTransactions(ctx, ledger.TransactionFilter{OwnerID: "u1", NameContains: "COFFEE", NewestFirst: true})
	if len(desc) != 2 || desc[0].ID != 3 || desc[1].ID != 1 {
		t.Fatalf("unexpected newest-first order: %+v", desc)
	}

	ranged, _ := s.QueryTransactions(ctx, ledger.TransactionFilter{
		OwnerID: "u1",
		Type:    core.Expense,
		From:    core.NewDate(2024, 5, 3),
		To:      core.NewDate(2024, 5, 3),
	})
	if len(ranged) != 2 {
		t.Fatalf("expected 2 expenses on 2024-05-03, got %d", len(ranged))
	}
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.CreateUserProfile(ctx, "u1")
	s.CreateUserProfile(ctx, "u2")
	tx, _ := s.InsertTransaction(ctx, newTx("u2", "x", core.NewDate(2024, 5, 1), 100, core.Expense, nil))

	if err := s.DeleteTransaction(ctx, "u1", tx.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected transaction not found, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u2", tx.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u2", tx.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected transaction not found on second delete, got %v", err)
	}
}

func TestDeleteCategoryDetachesTransactions(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Rent", "Food", "Food"})
	cats, _ := s.ListCategories(ctx)
	if len(cats) != 2 || cats[0].Name != "Food" || cats[1].Name != "Rent" {
		t.Fatalf("unexpected categories: %+v", cats)
	}

	s.CreateUserProfile(ctx, "u1")
	rent := cats[1].ID
	s.InsertTransaction(ctx, newTx("u1", "june", core.NewDate(2024, 6, 1), 90000, core.Expense, &rent))

	if err := s.DeleteCategory(ctx, rent); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	txs, _ := s.QueryTransactions(ctx, ledger.TransactionFilter{OwnerID: "u1"})
	if len(txs) != 1 || txs[0].CategoryID != nil || txs[0].CategoryName != "" {
		t.Fatalf("expected detached transaction, got %+v", txs)
	}
	if err := s.DeleteCategory(ctx, rent); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
}

func TestQueryFoldsNonASCIINames(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.CreateUserProfile(ctx, "u1")
	s.InsertTransaction(ctx, newTx("u1", "CAFÉ ÉCLAIR", core.NewDate(2024, 5, 2), 450, core.Expense, nil))

	for _, needle := range []string{"éclair", "Café", "CAFÉ ÉCLAIR"} {
		got, _ := s.QueryTransactions(ctx, ledger.TransactionFilter{OwnerID: "u1", NameContains: needle})
		if len(got) != 1 {
			t.Fatalf("filter %q: expected 1 match, got %+v", needle, got)
		}
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	cats, _ := s.ListCategories(context.Background())
	if len(cats) != len(defaultCategories) {
		t.Fatalf("expected defaults when file missing, got %v", cats)
	}

	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte("# header\nB\nA\nB\n\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background())
	if len(cats) != 2 || cats[0].Name != "A" || cats[1].Name != "B" {
		t.Fatalf("unexpected cats: %v", cats)
	}
}
