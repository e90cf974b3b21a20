package depreciation

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxProjectionPeriods bounds projections for methods that approach salvage
// asymptotically or assets with very long lives
const maxProjectionPeriods = 1200

// ProjectionRow is one month of an asset's depreciation schedule
type ProjectionRow struct {
	Period                  int             `json:"period"`
	Date                    time.Time       `json:"date"`
	DepreciationAmount      decimal.Decimal `json:"depreciation_amount"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
	BookValue               decimal.Decimal `json:"book_value"`
	IsCompleted             bool            `json:"is_completed"`
}

// Project builds the month-by-month schedule of an asset: posted ledger
// entries first, then simulated periods from the current state until the
// asset reaches salvage value or the end of its life. Nothing is persisted.
func Project(calc Calculator, asset Asset, posted []LedgerEntry, usage UsageLookup, asOf time.Time) ([]ProjectionRow, error) {
	rows := make([]ProjectionRow, 0, len(posted)+asset.RemainingPeriods())

	price := decimal.Zero
	if asset.PurchasePrice != nil {
		price = *asset.PurchasePrice
	}

	for i, entry := range posted {
		rows = append(rows, ProjectionRow{
			Period:                  asset.PriorDepreciationMonths + i + 1,
			Date:                    entry.DepreciationDate,
			DepreciationAmount:      entry.DepreciationAmount,
			AccumulatedDepreciation: price.Sub(entry.BookValueEnd),
			BookValue:               entry.BookValueEnd,
			IsCompleted:             true,
		})
	}

	if asset.IsFullyDepreciated {
		return rows, nil
	}

	state := asset
	next := len(rows)
	for i := 0; i < maxProjectionPeriods; i++ {
		due := state.dueDate(asOf)
		var units *decimal.Decimal
		if usage != nil && state.Method == MethodUnitsOfProduction {
			units = usage(PeriodOf(due))
		}
		result, err := calc.Compute(&state, units)
		if err != nil {
			return nil, err
		}
		if result.NoOp {
			break
		}
		next++
		rows = append(rows, ProjectionRow{
			Period:                  state.PriorDepreciationMonths + next,
			Date:                    due,
			DepreciationAmount:      result.Amount,
			AccumulatedDepreciation: result.NewAccumulated,
			BookValue:               result.NewBookValue,
		})
		state.ApplyPosting(result, due)
		if result.FullyDepreciated {
			break
		}
	}
	return rows, nil
}
