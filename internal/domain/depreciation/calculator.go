package depreciation

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places money amounts are rounded to
const MoneyScale = 2

var two = decimal.NewFromInt(2)

// Result is the outcome of calculating one period for one asset
type Result struct {
	Amount              decimal.Decimal
	BookValueBefore     decimal.Decimal
	NewBookValue        decimal.Decimal
	NewAccumulated      decimal.Decimal
	MonthlyDepreciation decimal.Decimal
	FullyDepreciated    bool
	// NoOp is set when the asset was already at salvage value and nothing
	// was calculated.
	NoOp bool
}

// Calculator computes depreciation for a single period. It performs no I/O.
type Calculator struct{}

// NewCalculator creates a new Calculator
func NewCalculator() Calculator {
	return Calculator{}
}

// Compute calculates the next period for the asset. units is the usage
// reported for the period and is only consulted for units of production;
// nil means no usage data was supplied.
func (Calculator) Compute(asset *Asset, units *decimal.Decimal) (Result, error) {
	if err := validateForCalculation(asset); err != nil {
		return Result{}, err
	}

	book := asset.CurrentBookValue
	salvage := asset.SalvageValue

	if asset.IsAtSalvage() {
		return Result{
			Amount:              decimal.Zero,
			BookValueBefore:     book,
			NewBookValue:        book,
			NewAccumulated:      asset.PurchasePrice.Sub(book),
			MonthlyDepreciation: decimal.Zero,
			FullyDepreciated:    true,
			NoOp:                true,
		}, nil
	}

	var amount, monthly decimal.Decimal
	switch asset.Method {
	case MethodStraightLine:
		amount, monthly = straightLine(asset)
	case MethodDecliningBalance:
		amount = decliningBalance(asset)
		monthly = amount
	case MethodSumOfYearsDigits:
		amount = sumOfYearsDigits(asset)
		monthly = amount
	case MethodUnitsOfProduction:
		amount, monthly = unitsOfProduction(asset, units)
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}

	newBook := book.Sub(amount)
	fully := false
	if newBook.LessThanOrEqual(salvage) {
		amount = book.Sub(salvage)
		newBook = salvage
		fully = true
	}

	return Result{
		Amount:              amount,
		BookValueBefore:     book,
		NewBookValue:        newBook,
		NewAccumulated:      asset.PurchasePrice.Sub(newBook),
		MonthlyDepreciation: monthly,
		FullyDepreciated:    fully,
	}, nil
}

func validateForCalculation(asset *Asset) error {
	if !asset.Method.IsSet() {
		return ErrMethodNotSet
	}
	if !asset.Method.IsValid() {
		return ErrInvalidMethod
	}
	if asset.UsefulLifeReviewRequired {
		return ErrUsefulLifeReview
	}
	if asset.UsefulLifeMonths <= 0 {
		return ErrInvalidUsefulLife
	}
	if asset.PurchasePrice == nil {
		return ErrPurchasePriceMissing
	}
	if asset.SalvageValue.GreaterThan(*asset.PurchasePrice) {
		return ErrSalvageExceedsPrice
	}
	return nil
}

// remainderIfFinal returns book-salvage when at most one period of life is
// left, absorbing rounding into the last period.
func remainderIfFinal(asset *Asset) (decimal.Decimal, bool) {
	if asset.RemainingPeriods() <= 1 {
		return asset.CurrentBookValue.Sub(asset.SalvageValue), true
	}
	return decimal.Zero, false
}

func straightLine(asset *Asset) (amount, monthly decimal.Decimal) {
	monthly = asset.DepreciableAmount().
		Div(decimal.NewFromInt(int64(asset.UsefulLifeMonths))).
		Round(MoneyScale)
	if rest, final := remainderIfFinal(asset); final {
		return rest, monthly
	}
	return monthly, monthly
}

// decliningBalance applies the double-declining rate to the current book
// value and switches to straight line over the remaining life once that
// yields the larger amount.
func decliningBalance(asset *Asset) decimal.Decimal {
	if rest, final := remainderIfFinal(asset); final {
		return rest
	}
	life := decimal.NewFromInt(int64(asset.UsefulLifeMonths))
	rate := two.Div(life)
	amount := asset.CurrentBookValue.Mul(rate).Round(MoneyScale)

	remaining := decimal.NewFromInt(int64(asset.RemainingPeriods()))
	sl := asset.CurrentBookValue.Sub(asset.SalvageValue).Div(remaining).Round(MoneyScale)
	if sl.GreaterThan(amount) {
		return sl
	}
	return amount
}

// sumOfYearsDigits weights each period by the number of periods remaining,
// so the weights over the whole life sum to n(n+1)/2.
func sumOfYearsDigits(asset *Asset) decimal.Decimal {
	if rest, final := remainderIfFinal(asset); final {
		return rest
	}
	n := int64(asset.UsefulLifeMonths)
	digits := decimal.NewFromInt(n * (n + 1) / 2)
	weight := decimal.NewFromInt(int64(asset.RemainingPeriods()))
	return asset.DepreciableAmount().Mul(weight).Div(digits).Round(MoneyScale)
}

// unitsOfProduction is proportional to the period's usage against the rated
// capacity. Without usage data or capacity it falls back to straight line.
func unitsOfProduction(asset *Asset, units *decimal.Decimal) (amount, monthly decimal.Decimal) {
	if units == nil || asset.TotalEstimatedUnits == nil || !asset.TotalEstimatedUnits.IsPositive() {
		return straightLine(asset)
	}
	amount = asset.DepreciableAmount().Mul(*units).Div(*asset.TotalEstimatedUnits).Round(MoneyScale)
	return amount, amount
}
