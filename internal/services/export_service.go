package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/models"
	"spacebudget/internal/types"
)

// ExportSheet is the name of the worksheet holding exported transactions.
const ExportSheet = "Transactions"

var exportHeaders = []interface{}{"Date", "Type", "Amount", "Category", "From", "To", "Memo"}

// exportService writes spreadsheet exports.
type exportService struct {
	db    *gorm.DB
	guard AccessGuard
	loc   *time.Location
}

// NewExportService creates a new ExportServicer.
func NewExportService(db *gorm.DB, guard AccessGuard, loc *time.Location) ExportServicer {
	return &exportService{db: db, guard: guard, loc: loc}
}

// ExportTransactions writes the month's transactions, oldest first, as an
// xlsx workbook to w. Dates are rendered in the business timezone.
func (s *exportService) ExportTransactions(ctx context.Context, userID, slug string, month types.Month, w io.Writer) error {
	spaceID, err := s.guard.AssertSpaceAccess(ctx, userID, slug)
	if err != nil {
		return err
	}
	if month.IsZero() {
		return apperrors.ErrInvalidMonth
	}

	db := s.db.WithContext(ctx)
	start, end := month.Range(s.loc)

	var transactions []models.Transaction
	if err := db.Where("space_id = ? AND occurred_at BETWEEN ? AND ?", spaceID, start, end).
		Order("occurred_at ASC").Order("id ASC").
		Find(&transactions).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := db.Where("space_id = ?", spaceID).Find(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var holdings []models.Holding
	if err := db.Where("space_id = ?", spaceID).Find(&holdings).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	names := make(map[string]string, len(categories)+len(holdings))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for _, h := range holdings {
		names[h.ID] = h.Name
	}
	name := func(id *string) string {
		if id == nil {
			return ""
		}
		return names[*id]
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ExportSheet)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeaders); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i, t := range transactions {
		memo := ""
		if t.Memo != nil {
			memo = *t.Memo
		}
		row := []interface{}{
			t.OccurredAt.In(s.loc).Format("2006-01-02 15:04"),
			string(t.Type),
			t.Amount.InexactFloat64(),
			name(t.CategoryID),
			name(t.FromHoldingID),
			name(t.ToHoldingID),
			memo,
		}
		if err := f.SetSheetRow(ExportSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	f.SetColWidth(ExportSheet, "A", "A", 18)
	f.SetColWidth(ExportSheet, "B", "C", 12)
	f.SetColWidth(ExportSheet, "D", "F", 16)
	f.SetColWidth(ExportSheet, "G", "G", 40)

	if err := f.Write(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
