package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// Depreciation error codes. These are the domain codes themselves and are
// returned to clients unchanged.
const (
	ErrCodePermissionDenied      = "PERMISSION_DENIED"
	ErrCodeScheduleBusy          = "SCHEDULE_BUSY"
	ErrCodePersistenceFault      = "PERSISTENCE_FAULT"
	ErrCodePeriodAlreadyPosted   = "PERIOD_ALREADY_POSTED"
	ErrCodeInvalidScheduleName   = "INVALID_SCHEDULE_NAME"
	ErrCodeInvalidExecutionDay   = "INVALID_EXECUTION_DAY"
	ErrCodeInvalidScheduleType   = "INVALID_SCHEDULE_TYPE"
	ErrCodeInvalidCategoryFilter = "INVALID_CATEGORY_FILTER"
	ErrCodeInvalidExecutionState = "INVALID_EXECUTION_STATUS"
	ErrCodeInvalidUsage          = "INVALID_USAGE"
	ErrCodeInvalidPeriod         = "INVALID_PERIOD"
	ErrCodeMethodNotSet          = "DEPRECIATION_METHOD_NOT_SET"
	ErrCodeInvalidMethod         = "INVALID_METHOD"
	ErrCodeInvalidUsefulLife     = "INVALID_USEFUL_LIFE"
	ErrCodePurchasePriceMissing  = "PURCHASE_PRICE_MISSING"
	ErrCodeUsefulLifeReview      = "USEFUL_LIFE_REVIEW_REQUIRED"
	ErrCodeInvalidSalvageValue   = "INVALID_SALVAGE_VALUE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	ErrCodePermissionDenied:    http.StatusForbidden,
	ErrCodeScheduleBusy:        http.StatusConflict,
	ErrCodePeriodAlreadyPosted: http.StatusConflict,
	ErrCodePersistenceFault:    http.StatusInternalServerError,

	ErrCodeInvalidScheduleName:   http.StatusBadRequest,
	ErrCodeInvalidExecutionDay:   http.StatusBadRequest,
	ErrCodeInvalidScheduleType:   http.StatusBadRequest,
	ErrCodeInvalidCategoryFilter: http.StatusBadRequest,
	ErrCodeInvalidExecutionState: http.StatusBadRequest,
	ErrCodeInvalidUsage:          http.StatusBadRequest,
	ErrCodeInvalidPeriod:         http.StatusBadRequest,

	// Calculation failures only reach a client through the projection preview
	ErrCodeMethodNotSet:         http.StatusUnprocessableEntity,
	ErrCodeInvalidMethod:        http.StatusUnprocessableEntity,
	ErrCodeInvalidUsefulLife:    http.StatusUnprocessableEntity,
	ErrCodePurchasePriceMissing: http.StatusUnprocessableEntity,
	ErrCodeUsefulLifeReview:     http.StatusUnprocessableEntity,
	ErrCodeInvalidSalvageValue:  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic shared domain codes to the
// standardized ERR_ codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
