package borrowing

import "time"

// Policy carries the configurable circulation limits.
type Policy struct {
	LoanPeriodDays      int
	MaxRenewals         int
	MaxActiveBorrowings int
}

func DefaultPolicy() Policy {
	return Policy{LoanPeriodDays: 14, MaxRenewals: 2, MaxActiveBorrowings: 5}
}

// DueFrom returns the due date of a loan period starting at t.
func (p Policy) DueFrom(t time.Time) time.Time {
	return t.AddDate(0, 0, p.LoanPeriodDays)
}

// CheckLimit reports ErrTooManyActive when adding n borrowings to open would exceed the limit.
// A non-positive limit disables the check.
func (p Policy) CheckLimit(open int64, n int) error {
	if p.MaxActiveBorrowings <= 0 {
		return nil
	}
	if open+int64(n) > int64(p.MaxActiveBorrowings) {
		return ErrTooManyActive
	}
	return nil
}
