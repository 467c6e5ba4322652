package services

import (
	"testing"
	"time"

	"spacebudget/internal/ledger"
	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/pagination"
	"spacebudget/internal/testutil"
)

// ledgerEnv is an env with one category of each kind and two holdings.
type ledgerEnv struct {
	*env
	svc     TransactionServicer
	food    *models.Category
	salary  *models.Category
	bank    *models.Holding
	savings *models.Holding
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()
	e := newEnv(t)
	return &ledgerEnv{
		env:     e,
		svc:     NewTransactionService(e.db, e.spaces, kst),
		food:    testutil.CreateTestCategory(t, e.db, e.space.ID, models.CategoryKindExpense),
		salary:  testutil.CreateTestCategory(t, e.db, e.space.ID, models.CategoryKindIncome),
		bank:    testutil.CreateTestHolding(t, e.db, e.space.ID, "1000"),
		savings: testutil.CreateTestHolding(t, e.db, e.space.ID, "0"),
	}
}

func (l *ledgerEnv) create(t *testing.T, draft ledger.Draft, amount string, occurredAt time.Time) *models.Transaction {
	t.Helper()
	txn, err := l.svc.CreateTransaction(l.ctx, l.owner, l.space.Slug, NewTransaction{
		Draft:      draft,
		Amount:     money.MustParse(amount),
		OccurredAt: occurredAt,
	})
	testutil.AssertNoError(t, err)
	return txn
}

func TestCreateTransaction(t *testing.T) {
	t.Run("expense", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn, err := l.svc.CreateTransaction(l.ctx, l.owner, l.space.Slug, NewTransaction{
			Draft:      ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID},
			Amount:     money.MustParse("12000"),
			OccurredAt: at(2025, time.September, 3, 12, 0),
			Memo:       testutil.Ptr("  lunch  "),
		})
		testutil.AssertNoError(t, err)

		if txn.Type != ledger.Expense {
			t.Errorf("expected expense, got %s", txn.Type)
		}
		if txn.ToHoldingID != nil {
			t.Error("expense must not have a destination holding")
		}
		if txn.Memo == nil || *txn.Memo != "lunch" {
			t.Errorf("expected trimmed memo, got %v", txn.Memo)
		}
		if txn.CreatedBy != l.owner {
			t.Errorf("expected created_by %s, got %s", l.owner, txn.CreatedBy)
		}
	})

	t.Run("blank_memo_is_null", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn, err := l.svc.CreateTransaction(l.ctx, l.owner, l.space.Slug, NewTransaction{
			Draft:      ledger.IncomeDraft{CategoryID: l.salary.ID, ToHoldingID: l.bank.ID},
			Amount:     money.MustParse("1"),
			OccurredAt: time.Now(),
			Memo:       testutil.Ptr("   "),
		})
		testutil.AssertNoError(t, err)
		if txn.Memo != nil {
			t.Errorf("expected nil memo, got %q", *txn.Memo)
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		l := newLedgerEnv(t)
		_, err := l.svc.CreateTransaction(l.ctx, l.owner, l.space.Slug, NewTransaction{
			Draft:      ledger.IncomeDraft{CategoryID: l.salary.ID, ToHoldingID: l.bank.ID},
			Amount:     money.Zero,
			OccurredAt: time.Now(),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("same_holding_transfer", func(t *testing.T) {
		l := newLedgerEnv(t)
		_, err := l.svc.CreateTransaction(l.ctx, l.owner, l.space.Slug, NewTransaction{
			Draft:      ledger.TransferDraft{FromHoldingID: l.bank.ID, ToHoldingID: l.bank.ID},
			Amount:     money.MustParse("5"),
			OccurredAt: time.Now(),
		})
		testutil.AssertAppError(t, err, "SAME_HOLDING_TRANSFER")
	})

	t.Run("reference_from_other_space", func(t *testing.T) {
		l := newLedgerEnv(t)
		other := testutil.CreateTestSpace(t, l.db, l.owner)
		foreign := testutil.CreateTestHolding(t, l.db, other.ID, "0")

		_, err := l.svc.CreateTransaction(l.ctx, l.owner, l.space.Slug, NewTransaction{
			Draft:      ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: foreign.ID},
			Amount:     money.MustParse("5"),
			OccurredAt: time.Now(),
		})
		testutil.AssertAppError(t, err, "INVALID_REFERENCE")
	})

	t.Run("non_member", func(t *testing.T) {
		l := newLedgerEnv(t)
		_, err := l.svc.CreateTransaction(l.ctx, testutil.NewUserID(), l.space.Slug, NewTransaction{
			Draft:      ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID},
			Amount:     money.MustParse("5"),
			OccurredAt: time.Now(),
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("expense_to_income_moves_holding", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn := l.create(t, ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID}, "100", time.Now())

		income := ledger.Income
		patch := TransactionPatch{}
		patch.Type = &income
		patch.CategoryID = &l.salary.ID
		patch.ToHoldingID = &l.bank.ID

		updated, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, txn.ID, patch)
		testutil.AssertNoError(t, err)

		if updated.Type != ledger.Income {
			t.Errorf("expected income, got %s", updated.Type)
		}
		if updated.FromHoldingID != nil {
			t.Error("from_holding_id must be cleared when changing to income")
		}
		if updated.ToHoldingID == nil || *updated.ToHoldingID != l.bank.ID {
			t.Errorf("expected to_holding_id %s, got %v", l.bank.ID, updated.ToHoldingID)
		}
		if err := ledger.Check(updated.Row()); err != nil {
			t.Errorf("stored row is inconsistent: %v", err)
		}
	})

	t.Run("forbidden_field_rejected", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn := l.create(t, ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID}, "100", time.Now())

		patch := TransactionPatch{}
		patch.ToHoldingID = &l.savings.ID
		_, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, txn.ID, patch)
		testutil.AssertAppError(t, err, "TRANSACTION_INCONSISTENT")

		var stored models.Transaction
		l.db.First(&stored, "id = ?", txn.ID)
		if stored.ToHoldingID != nil {
			t.Error("rejected update must not write anything")
		}
	})

	t.Run("missing_required_field", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn := l.create(t, ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID}, "100", time.Now())

		transfer := ledger.Transfer
		patch := TransactionPatch{}
		patch.Type = &transfer
		_, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, txn.ID, patch)
		testutil.AssertAppError(t, err, "TRANSACTION_INCONSISTENT")
	})

	t.Run("transfer_to_same_holding", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn := l.create(t, ledger.TransferDraft{FromHoldingID: l.bank.ID, ToHoldingID: l.savings.ID}, "100", time.Now())

		patch := TransactionPatch{}
		patch.ToHoldingID = &l.bank.ID
		_, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, txn.ID, patch)
		testutil.AssertAppError(t, err, "SAME_HOLDING_TRANSFER")
	})

	t.Run("scalar_fields", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn := l.create(t, ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID}, "100", time.Now())
		when := at(2025, time.August, 31, 23, 30)

		updated, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, txn.ID, TransactionPatch{
			Amount:     testutil.Ptr(money.MustParse("99.99")),
			OccurredAt: &when,
			Memo:       testutil.Ptr("dinner"),
		})
		testutil.AssertNoError(t, err)
		testutil.AssertAmount(t, "99.99", updated.Amount)
		if !updated.OccurredAt.Equal(when) {
			t.Errorf("expected %s, got %s", when, updated.OccurredAt)
		}
		if updated.Memo == nil || *updated.Memo != "dinner" {
			t.Errorf("expected memo dinner, got %v", updated.Memo)
		}
		if updated.Type != ledger.Expense || *updated.CategoryID != l.food.ID {
			t.Error("type and references should be unchanged")
		}

		cleared, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, txn.ID, TransactionPatch{Memo: testutil.Ptr("")})
		testutil.AssertNoError(t, err)
		if cleared.Memo != nil {
			t.Error("empty memo should clear it")
		}
	})

	t.Run("reference_from_other_space", func(t *testing.T) {
		l := newLedgerEnv(t)
		txn := l.create(t, ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID}, "100", time.Now())
		other := testutil.CreateTestSpace(t, l.db, l.owner)
		foreign := testutil.CreateTestCategory(t, l.db, other.ID, models.CategoryKindExpense)

		patch := TransactionPatch{}
		patch.CategoryID = &foreign.ID
		_, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, txn.ID, patch)
		testutil.AssertAppError(t, err, "INVALID_REFERENCE")
	})

	t.Run("not_found", func(t *testing.T) {
		l := newLedgerEnv(t)
		_, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, testutil.NewUserID(), TransactionPatch{Memo: testutil.Ptr("x")})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	l := newLedgerEnv(t)
	txn := l.create(t, ledger.IncomeDraft{CategoryID: l.salary.ID, ToHoldingID: l.bank.ID}, "100", time.Now())

	deleted, err := l.svc.DeleteTransaction(l.ctx, l.owner, l.space.Slug, txn.ID)
	testutil.AssertNoError(t, err)
	if deleted == nil || *deleted != txn.ID {
		t.Fatalf("expected deleted id, got %v", deleted)
	}

	_, err = l.svc.GetTransaction(l.ctx, l.owner, l.space.Slug, txn.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	again, err := l.svc.DeleteTransaction(l.ctx, l.owner, l.space.Slug, txn.ID)
	testutil.AssertNoError(t, err)
	if again != nil {
		t.Error("second delete should return nil")
	}
}

func TestListTransactions(t *testing.T) {
	l := newLedgerEnv(t)
	lunch := l.create(t, ledger.ExpenseDraft{CategoryID: l.food.ID, FromHoldingID: l.bank.ID}, "12", at(2025, time.September, 1, 0, 30))
	pay := l.create(t, ledger.IncomeDraft{CategoryID: l.salary.ID, ToHoldingID: l.bank.ID}, "3000", at(2025, time.September, 10, 9, 0))
	move := l.create(t, ledger.TransferDraft{FromHoldingID: l.bank.ID, ToHoldingID: l.savings.ID}, "500", at(2025, time.September, 30, 23, 59))
	_, err := l.svc.UpdateTransaction(l.ctx, l.owner, l.space.Slug, lunch.ID, TransactionPatch{Memo: testutil.Ptr("Lunch 50% off")})
	testutil.AssertNoError(t, err)

	ids := func(page *pagination.Page[models.Transaction]) []string {
		out := make([]string, 0, len(page.Items))
		for _, txn := range page.Items {
			out = append(out, txn.ID)
		}
		return out
	}
	list := func(f TransactionFilter) []string {
		t.Helper()
		page, err := l.svc.ListTransactions(l.ctx, l.owner, l.space.Slug, f, pagination.CursorRequest{})
		testutil.AssertNoError(t, err)
		return ids(page)
	}
	equal := func(t *testing.T, want, got []string) {
		t.Helper()
		if len(want) != len(got) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	}

	t.Run("newest_first", func(t *testing.T) {
		equal(t, []string{move.ID, pay.ID, lunch.ID}, list(TransactionFilter{}))
	})

	t.Run("by_type", func(t *testing.T) {
		equal(t, []string{move.ID, lunch.ID}, list(TransactionFilter{Types: []ledger.Type{ledger.Expense, ledger.Transfer}}))
	})

	t.Run("unknown_type", func(t *testing.T) {
		_, err := l.svc.ListTransactions(l.ctx, l.owner, l.space.Slug, TransactionFilter{Types: []ledger.Type{"refund"}}, pagination.CursorRequest{})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("by_holding_either_side", func(t *testing.T) {
		equal(t, []string{move.ID}, list(TransactionFilter{HoldingID: &l.savings.ID}))
		equal(t, []string{move.ID, pay.ID, lunch.ID}, list(TransactionFilter{HoldingID: &l.bank.ID}))
	})

	t.Run("by_category", func(t *testing.T) {
		equal(t, []string{pay.ID}, list(TransactionFilter{CategoryID: &l.salary.ID}))
	})

	t.Run("memo_literal_percent", func(t *testing.T) {
		equal(t, []string{lunch.ID}, list(TransactionFilter{Query: "50%"}))
		equal(t, []string{}, list(TransactionFilter{Query: "5%f"}))
	})

	t.Run("date_bounds_in_business_zone", func(t *testing.T) {
		// 2025-09-01 00:30 KST is still August in UTC.
		equal(t, []string{lunch.ID}, list(TransactionFilter{From: "2025-09-01", To: "2025-09-01"}))
		equal(t, []string{move.ID}, list(TransactionFilter{From: "2025-09-30", To: "2025-09-30"}))
		equal(t, []string{pay.ID}, list(TransactionFilter{From: "2025-09-10T00:00:00Z", To: "2025-09-29T00:00:00Z"}))
	})

	t.Run("bad_date", func(t *testing.T) {
		_, err := l.svc.ListTransactions(l.ctx, l.owner, l.space.Slug, TransactionFilter{From: "yesterday"}, pagination.CursorRequest{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("cursor_walk", func(t *testing.T) {
		first, err := l.svc.ListTransactions(l.ctx, l.owner, l.space.Slug, TransactionFilter{}, pagination.CursorRequest{Limit: 2})
		testutil.AssertNoError(t, err)
		equal(t, []string{move.ID, pay.ID}, ids(first))
		if !first.HasMore {
			t.Fatal("expected more results")
		}

		second, err := l.svc.ListTransactions(l.ctx, l.owner, l.space.Slug, TransactionFilter{}, pagination.CursorRequest{Limit: 2, Cursor: *first.NextCursor})
		testutil.AssertNoError(t, err)
		equal(t, []string{lunch.ID}, ids(second))
		if second.HasMore || second.NextCursor != nil {
			t.Error("expected last page")
		}
	})
}
