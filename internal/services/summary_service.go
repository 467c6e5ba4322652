package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/ledger"
	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/types"
)

// summaryService builds read-only dashboard views.
type summaryService struct {
	db    *gorm.DB
	guard AccessGuard
	loc   *time.Location
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB, guard AccessGuard, loc *time.Location) SummaryServicer {
	return &summaryService{db: db, guard: guard, loc: loc}
}

// FormOptions returns every category and holding of the space.
func (s *summaryService) FormOptions(ctx context.Context, userID, slug string) (*FormOptions, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	opts := &FormOptions{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("space_id = ?", spaceID).
			Order("kind ASC").Order("name ASC").
			Find(&opts.Categories).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("space_id = ?", spaceID).
			Order("name ASC").
			Find(&opts.Holdings).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if opts.Categories == nil {
		opts.Categories = []models.Category{}
	}
	if opts.Holdings == nil {
		opts.Holdings = []models.Holding{}
	}
	return opts, nil
}

type typeTotal struct {
	Type  ledger.Type
	Total money.Amount
}

type holdingFlow struct {
	HoldingID string
	Total     money.Amount
}

// MonthSummary returns income and expense for the month, the balance of every
// holding over all time and the month's budget progress.
func (s *summaryService) MonthSummary(ctx context.Context, userID, slug string, month types.Month) (*MonthSummary, error) {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if month.IsZero() {
		return nil, apperrors.ErrInvalidMonth
	}

	start, end := month.Range(s.loc)

	var (
		totals   []typeTotal
		holdings []models.Holding
		inflows  []holdingFlow
		outflows []holdingFlow
		budgets  []BudgetProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Transaction{}).
			Select("type, COALESCE(SUM(amount), 0) AS total").
			Where("space_id = ? AND type IN ?", spaceID, []ledger.Type{ledger.Income, ledger.Expense}).
			Where("occurred_at BETWEEN ? AND ?", start, end).
			Group("type").
			Scan(&totals).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("space_id = ?", spaceID).Order("name ASC").Find(&holdings).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Transaction{}).
			Select("to_holding_id AS holding_id, COALESCE(SUM(amount), 0) AS total").
			Where("space_id = ? AND to_holding_id IS NOT NULL", spaceID).
			Group("to_holding_id").
			Scan(&inflows).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Transaction{}).
			Select("from_holding_id AS holding_id, COALESCE(SUM(amount), 0) AS total").
			Where("space_id = ? AND from_holding_id IS NOT NULL", spaceID).
			Group("from_holding_id").
			Scan(&outflows).Error
	})
	g.Go(func() error {
		var err error
		budgets, err = budgetProgress(s.db.WithContext(gctx), spaceID, month, s.loc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, asAppError(err)
	}

	summary := &MonthSummary{
		Month:       month,
		Income:      money.Zero,
		Expense:     money.Zero,
		TotalAssets: money.Zero,
		Holdings:    make([]HoldingBalance, 0, len(holdings)),
		Budgets:     budgets,
	}
	for _, t := range totals {
		switch t.Type {
		case ledger.Income:
			summary.Income = t.Total
		case ledger.Expense:
			summary.Expense = t.Total
		}
	}

	net := make(map[string]money.Amount, len(holdings))
	for _, f := range inflows {
		net[f.HoldingID] = net[f.HoldingID].Add(f.Total)
	}
	for _, f := range outflows {
		net[f.HoldingID] = net[f.HoldingID].Sub(f.Total)
	}

	for _, h := range holdings {
		balance := h.OpeningBalance.Add(net[h.ID])
		summary.Holdings = append(summary.Holdings, HoldingBalance{
			HoldingID: h.ID,
			Name:      h.Name,
			Type:      string(h.Type),
			Currency:  h.Currency,
			Balance:   balance,
		})
		summary.TotalAssets = summary.TotalAssets.Add(balance)
	}
	return summary, nil
}
