package fine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Assessment is the outcome of mapping a returned condition to a fine.
type Assessment struct {
	Amount   decimal.Decimal
	FineType *FineType
	// Unconfigured is set when the condition could carry a fine but no active type matched.
	Unconfigured bool
	// Ambiguous is set when more than one active type matched; the lowest id wins.
	Ambiguous bool
}

func (a Assessment) RequiresApproval() bool { return a.Amount.IsPositive() }

// IsFineFree reports conditions that never look up a fine type.
func IsFineFree(condition string) bool {
	return condition == "good" || condition == "new"
}

// Assess picks the fine for condition among candidates. Inactive or non-matching
// candidates are ignored, so the caller may pass an unfiltered list.
func Assess(condition string, candidates []FineType) Assessment {
	if IsFineFree(condition) {
		return Assessment{Amount: decimal.Zero}
	}
	var matched []FineType
	for _, ft := range candidates {
		if ft.IsActive && string(ft.BookCondition) == condition {
			matched = append(matched, ft)
		}
	}
	if len(matched) == 0 {
		return Assessment{Amount: decimal.Zero, Unconfigured: true}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	ft := matched[0]
	return Assessment{
		Amount:    ft.Amount,
		FineType:  &ft,
		Ambiguous: len(matched) > 1,
	}
}
