package depreciation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting is one period's calculated depreciation for an asset
type Posting struct {
	Period Period
	Date   time.Time
	Result Result
}

// UsageLookup returns the units used by an asset in a period, or nil when no
// reading exists
type UsageLookup func(p Period) *decimal.Decimal

// PostingPlan is the set of periods an asset needs posted in a single run
type PostingPlan struct {
	Postings []Posting
	// Asset is the state after all postings have been applied
	Asset Asset
}

// TotalAmount sums the depreciation across the plan
func (p PostingPlan) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, posting := range p.Postings {
		total = total.Add(posting.Result.Amount)
	}
	return total
}

// BookValueBefore is the book value prior to the first posting
func (p PostingPlan) BookValueBefore() decimal.Decimal {
	if len(p.Postings) == 0 {
		return p.Asset.CurrentBookValue
	}
	return p.Postings[0].Result.BookValueBefore
}

// FirstPeriod returns the earliest period in the plan
func (p PostingPlan) FirstPeriod() (Period, bool) {
	if len(p.Postings) == 0 {
		return Period{}, false
	}
	return p.Postings[0].Period, true
}

// PlanPostings calculates every period the asset has due on or before runDate,
// up to maxPeriods. The input asset is not modified. A calculation error on
// any period fails the whole plan so a partially posted catch-up never occurs.
func PlanPostings(calc Calculator, asset Asset, runDate time.Time, maxPeriods int, usage UsageLookup) (PostingPlan, error) {
	if maxPeriods < 1 {
		maxPeriods = 1
	}
	state := asset
	plan := PostingPlan{}

	for len(plan.Postings) < maxPeriods {
		due := state.dueDate(runDate)
		if due.After(runDate) {
			break
		}
		period := PeriodOf(due)

		var units *decimal.Decimal
		if usage != nil && state.Method == MethodUnitsOfProduction {
			units = usage(period)
		}

		result, err := calc.Compute(&state, units)
		if err != nil {
			return PostingPlan{}, err
		}
		if result.NoOp {
			state.IsFullyDepreciated = true
			break
		}

		plan.Postings = append(plan.Postings, Posting{Period: period, Date: due, Result: result})
		state.ApplyPosting(result, due)
		if result.FullyDepreciated {
			break
		}
	}

	plan.Asset = state
	return plan, nil
}
