package depreciation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DetailStatus is the per-asset outcome within an execution
type DetailStatus string

const (
	DetailStatusSuccess DetailStatus = "SUCCESS"
	DetailStatusFailed  DetailStatus = "FAILED"
	DetailStatusSkipped DetailStatus = "SKIPPED"
)

// AssetDepreciationDetail records what happened to one asset in one execution.
// Rows are written once and never updated.
type AssetDepreciationDetail struct {
	ID                 uuid.UUID
	ExecutionID        uuid.UUID
	AssetID            uuid.UUID
	Status             DetailStatus
	DepreciationAmount decimal.Decimal
	BookValueBefore    decimal.Decimal
	BookValueAfter     decimal.Decimal
	PeriodsPosted      int
	ErrorMessage       *string
	CreatedAt          time.Time
}

// DetailView is a detail row joined with the asset identity for display
type DetailView struct {
	AssetDepreciationDetail
	ItemCode     string
	Description  string
	CategoryName string
}

// NewSuccessDetail builds the detail row for a posted plan
func NewSuccessDetail(executionID uuid.UUID, assetID uuid.UUID, plan PostingPlan) AssetDepreciationDetail {
	return AssetDepreciationDetail{
		ID:                 uuid.New(),
		ExecutionID:        executionID,
		AssetID:            assetID,
		Status:             DetailStatusSuccess,
		DepreciationAmount: plan.TotalAmount(),
		BookValueBefore:    plan.BookValueBefore(),
		BookValueAfter:     plan.Asset.CurrentBookValue,
		PeriodsPosted:      len(plan.Postings),
		CreatedAt:          time.Now(),
	}
}

// NewFailedDetail builds the detail row for an asset that could not be posted.
// The book value is reported unchanged.
func NewFailedDetail(executionID uuid.UUID, asset *Asset, reason string) AssetDepreciationDetail {
	return AssetDepreciationDetail{
		ID:                 uuid.New(),
		ExecutionID:        executionID,
		AssetID:            asset.ID,
		Status:             DetailStatusFailed,
		DepreciationAmount: decimal.Zero,
		BookValueBefore:    asset.CurrentBookValue,
		BookValueAfter:     asset.CurrentBookValue,
		ErrorMessage:       &reason,
		CreatedAt:          time.Now(),
	}
}

// NewSkippedDetail builds the detail row for an asset whose period was already posted
func NewSkippedDetail(executionID uuid.UUID, asset *Asset, reason string) AssetDepreciationDetail {
	d := NewFailedDetail(executionID, asset, reason)
	d.Status = DetailStatusSkipped
	return d
}

// IsFailure reports whether the row records a failed asset
func (d *AssetDepreciationDetail) IsFailure() bool {
	return d.Status == DetailStatusFailed
}
