// Package ledger holds the rules that keep a transaction's reference columns
// consistent with its type. It has no datastore access: callers load the
// current row, ask Resolve or NewDraft for the consistent result and write it
// in one statement.
//
//	type      category  from  to
//	expense   required  req.  forbidden
//	income    required  forb. required
//	transfer  forbidden req.  required (and from != to)
package ledger

import (
	"fmt"

	apperrors "spacebudget/internal/errors"
)

// Type is the kind of money movement a transaction records.
type Type string

const (
	Expense  Type = "expense"
	Income   Type = "income"
	Transfer Type = "transfer"
)

// Types lists every valid transaction type.
var Types = []Type{Expense, Income, Transfer}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	_, ok := rules[t]
	return ok
}

// ParseType converts a string to a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", apperrors.WithMessage(apperrors.ErrInvalidTransactionType,
			fmt.Sprintf("unsupported transaction type %q", s))
	}
	return t, nil
}

// Refs are the reference columns of a transaction. A nil pointer is an
// absent reference.
type Refs struct {
	CategoryID    *string
	FromHoldingID *string
	ToHoldingID   *string
}

// IDs returns the non-nil references.
func (r Refs) IDs() (categories, holdings []string) {
	if r.CategoryID != nil {
		categories = append(categories, *r.CategoryID)
	}
	if r.FromHoldingID != nil {
		holdings = append(holdings, *r.FromHoldingID)
	}
	if r.ToHoldingID != nil && (r.FromHoldingID == nil || *r.FromHoldingID != *r.ToHoldingID) {
		holdings = append(holdings, *r.ToHoldingID)
	}
	return categories, holdings
}

type field int

const (
	categoryField field = iota
	fromField
	toField
)

func (f field) String() string {
	switch f {
	case categoryField:
		return "category_id"
	case fromField:
		return "from_holding_id"
	default:
		return "to_holding_id"
	}
}

func (r Refs) get(f field) *string {
	switch f {
	case categoryField:
		return r.CategoryID
	case fromField:
		return r.FromHoldingID
	default:
		return r.ToHoldingID
	}
}

func (r *Refs) set(f field, v *string) {
	switch f {
	case categoryField:
		r.CategoryID = v
	case fromField:
		r.FromHoldingID = v
	default:
		r.ToHoldingID = v
	}
}

type rule struct {
	required  []field
	forbidden field
}

var rules = map[Type]rule{
	Expense:  {required: []field{categoryField, fromField}, forbidden: toField},
	Income:   {required: []field{categoryField, toField}, forbidden: fromField},
	Transfer: {required: []field{fromField, toField}, forbidden: categoryField},
}

// Row is the type and references of a stored transaction.
type Row struct {
	Type Type
	Refs
}

// Check verifies that exactly the references applicable to the row's type
// are present.
func Check(row Row) error {
	r, ok := rules[row.Type]
	if !ok {
		return apperrors.ErrInvalidTransactionType
	}
	if row.get(r.forbidden) != nil {
		return forbiddenError(row.Type, r.forbidden)
	}
	for _, f := range r.required {
		if row.get(f) == nil {
			return requiredError(row.Type, f)
		}
	}
	return checkDistinct(row.Type, row.Refs)
}

// Patch is a partial update. Nil fields are left as they are.
type Patch struct {
	Type *Type
	Refs
}

// Resolve merges a patch into the current row:
//
//  1. the effective type is the patched type, else the current one;
//  2. a patch that sets the field forbidden for the effective type is rejected;
//  3. final references are the patched values, else the current ones;
//  4. a transfer whose final holdings are equal is rejected;
//  5. every field required by the effective type must have a final value;
//  6. the forbidden field is cleared even when the patch did not mention it.
//
// The returned row always satisfies Check.
func Resolve(current Row, p Patch) (Row, error) {
	effective := current.Type
	if p.Type != nil {
		if !p.Type.Valid() {
			return Row{}, apperrors.WithMessage(apperrors.ErrInvalidTransactionType,
				fmt.Sprintf("unsupported transaction type %q", *p.Type))
		}
		effective = *p.Type
	}
	r, ok := rules[effective]
	if !ok {
		return Row{}, apperrors.ErrInvalidTransactionType
	}

	if p.get(r.forbidden) != nil {
		return Row{}, forbiddenError(effective, r.forbidden)
	}

	final := current.Refs
	for _, f := range []field{categoryField, fromField, toField} {
		if v := p.get(f); v != nil {
			final.set(f, v)
		}
	}

	if err := checkDistinct(effective, final); err != nil {
		return Row{}, err
	}

	for _, f := range r.required {
		if final.get(f) == nil {
			return Row{}, requiredError(effective, f)
		}
	}

	final.set(r.forbidden, nil)
	return Row{Type: effective, Refs: final}, nil
}

func checkDistinct(t Type, refs Refs) error {
	if t != Transfer || refs.FromHoldingID == nil || refs.ToHoldingID == nil {
		return nil
	}
	if *refs.FromHoldingID == *refs.ToHoldingID {
		return apperrors.ErrSameHoldingTransfer
	}
	return nil
}

func forbiddenError(t Type, f field) error {
	return apperrors.WithMessage(apperrors.ErrTransactionInconsistent,
		fmt.Sprintf("%s is not allowed for %s transactions", f, t))
}

func requiredError(t Type, f field) error {
	return apperrors.WithMessage(apperrors.ErrTransactionInconsistent,
		fmt.Sprintf("%s transactions require %s", t, f))
}
