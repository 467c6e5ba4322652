package ledger

// Draft is a new transaction's type together with exactly the references
// that type carries. The variants are ExpenseDraft, IncomeDraft and
// TransferDraft.
type Draft interface {
	Type() Type
	Row() Row
}

// ExpenseDraft moves money out of a holding into a category.
type ExpenseDraft struct {
	CategoryID    string
	FromHoldingID string
}

// IncomeDraft moves money from a category into a holding.
type IncomeDraft struct {
	CategoryID  string
	ToHoldingID string
}

// TransferDraft moves money between two different holdings.
type TransferDraft struct {
	FromHoldingID string
	ToHoldingID   string
}

func (ExpenseDraft) Type() Type  { return Expense }
func (IncomeDraft) Type() Type   { return Income }
func (TransferDraft) Type() Type { return Transfer }

func (d ExpenseDraft) Row() Row {
	return Row{Type: Expense, Refs: Refs{CategoryID: ptr(d.CategoryID), FromHoldingID: ptr(d.FromHoldingID)}}
}

func (d IncomeDraft) Row() Row {
	return Row{Type: Income, Refs: Refs{CategoryID: ptr(d.CategoryID), ToHoldingID: ptr(d.ToHoldingID)}}
}

func (d TransferDraft) Row() Row {
	return Row{Type: Transfer, Refs: Refs{FromHoldingID: ptr(d.FromHoldingID), ToHoldingID: ptr(d.ToHoldingID)}}
}

// NewDraft converts a flat payload to its variant. It fails when the payload
// carries a reference its type forbids, lacks one its type requires, or is a
// transfer between a holding and itself.
func NewDraft(row Row) (Draft, error) {
	if err := Check(row); err != nil {
		return nil, err
	}
	switch row.Type {
	case Expense:
		return ExpenseDraft{CategoryID: *row.CategoryID, FromHoldingID: *row.FromHoldingID}, nil
	case Income:
		return IncomeDraft{CategoryID: *row.CategoryID, ToHoldingID: *row.ToHoldingID}, nil
	default:
		return TransferDraft{FromHoldingID: *row.FromHoldingID, ToHoldingID: *row.ToHoldingID}, nil
	}
}

func ptr(s string) *string {
	return &s
}
