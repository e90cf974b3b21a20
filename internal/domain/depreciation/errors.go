package depreciation

import (
	"errors"

	"github.com/erp/depreciation/internal/domain/shared"
)

// Calculation failures. These are recorded on the per-asset detail row and
// never abort a batch.
var (
	ErrMethodNotSet         = shared.NewDomainError("DEPRECIATION_METHOD_NOT_SET", "Depreciation method is not set")
	ErrInvalidMethod        = shared.NewDomainError("INVALID_METHOD", "Depreciation method is not supported")
	ErrInvalidUsefulLife    = shared.NewDomainError("INVALID_USEFUL_LIFE", "Useful life must be greater than zero months")
	ErrPurchasePriceMissing = shared.NewDomainError("PURCHASE_PRICE_MISSING", "Purchase price is missing")
	ErrUsefulLifeReview     = shared.NewDomainError("USEFUL_LIFE_REVIEW_REQUIRED", "Useful life is ambiguous and requires manual review")
	ErrSalvageExceedsPrice  = shared.NewDomainError("INVALID_SALVAGE_VALUE", "Salvage value cannot exceed purchase price")
)

// Batch and registry errors
var (
	ErrScheduleBusy           = shared.NewDomainError("SCHEDULE_BUSY", "A depreciation run is already in progress for this schedule")
	ErrPersistenceFault       = shared.NewDomainError("PERSISTENCE_FAULT", "Storage failure during depreciation run")
	ErrPeriodAlreadyPosted    = shared.NewDomainError("PERIOD_ALREADY_POSTED", "Depreciation for this period has already been posted")
	ErrInvalidScheduleName    = shared.NewDomainError("INVALID_SCHEDULE_NAME", "Schedule name is required and cannot exceed 100 characters")
	ErrInvalidExecutionDay    = shared.NewDomainError("INVALID_EXECUTION_DAY", "Execution day must be between 1 and 31")
	ErrInvalidScheduleType    = shared.NewDomainError("INVALID_SCHEDULE_TYPE", "Schedule type must be MONTHLY, QUARTERLY or ANNUALLY")
	ErrInvalidCategoryFilter  = shared.NewDomainError("INVALID_CATEGORY_FILTER", "A category cannot be both included and excluded")
	ErrScheduleNameTaken      = shared.NewDomainError("ALREADY_EXISTS", "A schedule with this name already exists")
	ErrExecutionTimeout       = shared.NewDomainError("TIMEOUT", "Timeout")
	ErrInvalidExecutionStatus = shared.NewDomainError("INVALID_EXECUTION_STATUS", "Unknown execution status")
)

var calculationFailureCodes = map[string]bool{
	ErrMethodNotSet.Code:         true,
	ErrInvalidMethod.Code:        true,
	ErrInvalidUsefulLife.Code:    true,
	ErrPurchasePriceMissing.Code: true,
	ErrUsefulLifeReview.Code:     true,
	ErrSalvageExceedsPrice.Code:  true,
}

// IsCalculationFailure reports whether err is a per-asset calculation failure
func IsCalculationFailure(err error) bool {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return false
	}
	return calculationFailureCodes[de.Code]
}

// Usage reading validation
var (
	ErrNegativeUsage = shared.NewDomainError("INVALID_USAGE", "Usage units cannot be negative")
	ErrInvalidPeriod = shared.NewDomainError("INVALID_PERIOD", "Period year or month is out of range")
)
