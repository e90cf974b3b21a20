package models

import (
	"time"

	"github.com/erp/depreciation/internal/domain/depreciation"
	"github.com/erp/depreciation/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AssetCategoryModel is the read model of the asset register's categories.
// The table is owned by the asset module and only joined here.
type AssetCategoryModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (AssetCategoryModel) TableName() string {
	return "asset_categories"
}

// AssetModel is the persistence model of a fixed asset. Only the depreciation
// columns are ever written by this service.
type AssetModel struct {
	BaseModel
	TenantID                 uuid.UUID           `gorm:"type:uuid;not null;index"`
	ItemCode                 string              `gorm:"type:varchar(50);not null"`
	Description              string              `gorm:"type:varchar(500)"`
	CategoryID               *uuid.UUID          `gorm:"type:uuid;index"`
	CategoryName             string              `gorm:"->;-:migration"`
	IsActive                 bool                `gorm:"not null"`
	PurchasePrice            decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	SalvageValue             decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentBookValue         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	AccumulatedDepreciation  decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	MonthlyDepreciation      decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	UsefulLifeYears          *int                `gorm:"column:useful_life_years"`
	UsefulLifeMonths         int                 `gorm:"not null;default:0"`
	UsefulLifeReviewRequired bool                `gorm:"not null;default:false"`
	DepreciationMethod       string              `gorm:"type:varchar(30);not null;default:''"`
	DepreciationStartDate    *time.Time          `gorm:"column:depreciation_start_date"`
	LastDepreciationDate     *time.Time          `gorm:"column:last_depreciation_date"`
	NextDepreciationDate     *time.Time          `gorm:"index"`
	IsFullyDepreciated       bool                `gorm:"not null;default:false;index"`
	PriorDepreciationMonths  int                 `gorm:"not null;default:0"`
	DepreciatedPeriods       int                 `gorm:"not null;default:0"`
	TotalEstimatedUnits      decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Version                  int                 `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (AssetModel) TableName() string {
	return "assets"
}

// ToDomain converts the persistence model to a domain Asset. The useful life
// is normalized on the way out so callers only ever see total months.
func (m *AssetModel) ToDomain() *depreciation.Asset {
	a := &depreciation.Asset{
		BaseEntity:               m.BaseModel.ToDomain(),
		TenantID:                 m.TenantID,
		ItemCode:                 m.ItemCode,
		Description:              m.Description,
		CategoryName:             m.CategoryName,
		IsActive:                 m.IsActive,
		SalvageValue:             m.SalvageValue,
		CurrentBookValue:         m.CurrentBookValue,
		AccumulatedDepreciation:  m.AccumulatedDepreciation,
		MonthlyDepreciation:      m.MonthlyDepreciation,
		UsefulLifeMonths:         m.UsefulLifeMonths,
		UsefulLifeYears:          m.UsefulLifeYears,
		UsefulLifeReviewRequired: m.UsefulLifeReviewRequired,
		Method:                   depreciation.Method(m.DepreciationMethod),
		DepreciationStartDate:    m.DepreciationStartDate,
		LastDepreciationDate:     m.LastDepreciationDate,
		NextDepreciationDate:     m.NextDepreciationDate,
		IsFullyDepreciated:       m.IsFullyDepreciated,
		PriorDepreciationMonths:  m.PriorDepreciationMonths,
		DepreciatedPeriods:       m.DepreciatedPeriods,
		Version:                  m.Version,
	}
	if m.CategoryID != nil {
		a.CategoryID = *m.CategoryID
	}
	if m.PurchasePrice.Valid {
		price := m.PurchasePrice.Decimal
		a.PurchasePrice = &price
	}
	if m.TotalEstimatedUnits.Valid {
		units := m.TotalEstimatedUnits.Decimal
		a.TotalEstimatedUnits = &units
	}
	a.Normalize()
	return a
}

// FromDomain populates the persistence model from a domain Asset
func (m *AssetModel) FromDomain(a *depreciation.Asset) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TenantID = a.TenantID
	m.ItemCode = a.ItemCode
	m.Description = a.Description
	m.CategoryName = a.CategoryName
	m.CategoryID = nil
	if a.CategoryID != uuid.Nil {
		id := a.CategoryID
		m.CategoryID = &id
	}
	m.IsActive = a.IsActive
	m.PurchasePrice = decimal.NullDecimal{}
	if a.PurchasePrice != nil {
		m.PurchasePrice = decimal.NewNullDecimal(*a.PurchasePrice)
	}
	m.SalvageValue = a.SalvageValue
	m.CurrentBookValue = a.CurrentBookValue
	m.AccumulatedDepreciation = a.AccumulatedDepreciation
	m.MonthlyDepreciation = a.MonthlyDepreciation
	m.UsefulLifeYears = a.UsefulLifeYears
	m.UsefulLifeMonths = a.UsefulLifeMonths
	m.UsefulLifeReviewRequired = a.UsefulLifeReviewRequired
	m.DepreciationMethod = string(a.Method)
	m.DepreciationStartDate = a.DepreciationStartDate
	m.LastDepreciationDate = a.LastDepreciationDate
	m.NextDepreciationDate = a.NextDepreciationDate
	m.IsFullyDepreciated = a.IsFullyDepreciated
	m.PriorDepreciationMonths = a.PriorDepreciationMonths
	m.DepreciatedPeriods = a.DepreciatedPeriods
	m.TotalEstimatedUnits = decimal.NullDecimal{}
	if a.TotalEstimatedUnits != nil {
		m.TotalEstimatedUnits = decimal.NewNullDecimal(*a.TotalEstimatedUnits)
	}
	m.Version = a.Version
}

// AssetModelFromDomain creates a new persistence model from a domain Asset
func AssetModelFromDomain(a *depreciation.Asset) *AssetModel {
	m := &AssetModel{}
	m.FromDomain(a)
	return m
}

// DepreciationColumns returns the columns a posting is allowed to change
func (m *AssetModel) DepreciationColumns() map[string]any {
	return map[string]any{
		"current_book_value":          m.CurrentBookValue,
		"accumulated_depreciation":    m.AccumulatedDepreciation,
		"monthly_depreciation":        m.MonthlyDepreciation,
		"useful_life_months":          m.UsefulLifeMonths,
		"useful_life_years":           m.UsefulLifeYears,
		"depreciation_start_date":     m.DepreciationStartDate,
		"last_depreciation_date":      m.LastDepreciationDate,
		"next_depreciation_date":      m.NextDepreciationDate,
		"is_fully_depreciated":        m.IsFullyDepreciated,
		"depreciated_periods":         m.DepreciatedPeriods,
		"useful_life_review_required": m.UsefulLifeReviewRequired,
		"version":                     m.Version + 1,
		"updated_at":                  time.Now(),
	}
}

// ScheduleModel is the persistence model for the Schedule aggregate root
type ScheduleModel struct {
	TenantAggregateModel
	Name              string                         `gorm:"type:varchar(100);not null"`
	Description       string                         `gorm:"type:text"`
	ScheduleType      depreciation.ScheduleType      `gorm:"type:varchar(20);not null;default:'MONTHLY'"`
	ExecutionDay      int                            `gorm:"not null"`
	IncludeCategories datatypes.JSONSlice[uuid.UUID] `gorm:"not null"`
	ExcludeCategories datatypes.JSONSlice[uuid.UUID] `gorm:"not null"`
	IsActive          bool                           `gorm:"not null;index"`
	LastExecutedAt    *time.Time                     `gorm:"index"`
}

// TableName returns the table name for GORM
func (ScheduleModel) TableName() string {
	return "depreciation_schedules"
}

// ToDomain converts the persistence model to a domain Schedule
func (m *ScheduleModel) ToDomain() *depreciation.Schedule {
	s := &depreciation.Schedule{
		Name:              m.Name,
		Description:       m.Description,
		ScheduleType:      m.ScheduleType,
		ExecutionDay:      m.ExecutionDay,
		IncludeCategories: append([]uuid.UUID{}, m.IncludeCategories...),
		ExcludeCategories: append([]uuid.UUID{}, m.ExcludeCategories...),
		IsActive:          m.IsActive,
		LastExecutedAt:    m.LastExecutedAt,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Schedule
func (m *ScheduleModel) FromDomain(s *depreciation.Schedule) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.Name = s.Name
	m.Description = s.Description
	m.ScheduleType = s.ScheduleType
	m.ExecutionDay = s.ExecutionDay
	m.IncludeCategories = datatypes.NewJSONSlice(nonNil(s.IncludeCategories))
	m.ExcludeCategories = datatypes.NewJSONSlice(nonNil(s.ExcludeCategories))
	m.IsActive = s.IsActive
	m.LastExecutedAt = s.LastExecutedAt
}

// ScheduleModelFromDomain creates a new persistence model from a domain Schedule
func ScheduleModelFromDomain(s *depreciation.Schedule) *ScheduleModel {
	m := &ScheduleModel{}
	m.FromDomain(s)
	return m
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

// ExecutionModel is the persistence model for the Execution aggregate root
type ExecutionModel struct {
	AggregateModel
	TenantID                uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ScheduleID              *uuid.UUID                   `gorm:"type:uuid;index"`
	ExecutorID              *uuid.UUID                   `gorm:"type:uuid"`
	TriggerType             depreciation.TriggerType     `gorm:"type:varchar(20);not null"`
	RunDate                 time.Time                    `gorm:"not null"`
	ExecutionDate           time.Time                    `gorm:"not null;index"`
	Status                  depreciation.ExecutionStatus `gorm:"type:varchar(30);not null;index"`
	TotalAssetsProcessed    int                          `gorm:"not null;default:0"`
	SuccessfulCalculations  int                          `gorm:"not null;default:0"`
	FailedCalculations      int                          `gorm:"not null;default:0"`
	SkippedAssets           int                          `gorm:"not null;default:0"`
	TotalDepreciationAmount decimal.Decimal              `gorm:"type:decimal(18,2);not null;default:0"`
	ExecutionDurationMs     int64                        `gorm:"not null;default:0"`
	ErrorMessage            string                       `gorm:"type:text"`
	CompletedAt             *time.Time
}

// TableName returns the table name for GORM
func (ExecutionModel) TableName() string {
	return "depreciation_executions"
}

// ToDomain converts the persistence model to a domain Execution
func (m *ExecutionModel) ToDomain() *depreciation.Execution {
	return &depreciation.Execution{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		TenantID:                m.TenantID,
		ScheduleID:              m.ScheduleID,
		ExecutorID:              m.ExecutorID,
		TriggerType:             m.TriggerType,
		RunDate:                 m.RunDate,
		ExecutionDate:           m.ExecutionDate,
		Status:                  m.Status,
		TotalAssetsProcessed:    m.TotalAssetsProcessed,
		SuccessfulCalculations:  m.SuccessfulCalculations,
		FailedCalculations:      m.FailedCalculations,
		SkippedAssets:           m.SkippedAssets,
		TotalDepreciationAmount: m.TotalDepreciationAmount,
		ExecutionDurationMs:     m.ExecutionDurationMs,
		ErrorMessage:            m.ErrorMessage,
		CompletedAt:             m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Execution
func (m *ExecutionModel) FromDomain(e *depreciation.Execution) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.TenantID = e.TenantID
	m.ScheduleID = e.ScheduleID
	m.ExecutorID = e.ExecutorID
	m.TriggerType = e.TriggerType
	m.RunDate = e.RunDate
	m.ExecutionDate = e.ExecutionDate
	m.Status = e.Status
	m.TotalAssetsProcessed = e.TotalAssetsProcessed
	m.SuccessfulCalculations = e.SuccessfulCalculations
	m.FailedCalculations = e.FailedCalculations
	m.SkippedAssets = e.SkippedAssets
	m.TotalDepreciationAmount = e.TotalDepreciationAmount
	m.ExecutionDurationMs = e.ExecutionDurationMs
	m.ErrorMessage = e.ErrorMessage
	m.CompletedAt = e.CompletedAt
}

// ExecutionModelFromDomain creates a new persistence model from a domain Execution
func ExecutionModelFromDomain(e *depreciation.Execution) *ExecutionModel {
	m := &ExecutionModel{}
	m.FromDomain(e)
	return m
}

// AssetDepreciationDetailModel is the persistence model of a per-asset outcome
type AssetDepreciationDetailModel struct {
	ID                 uuid.UUID                 `gorm:"type:uuid;primary_key"`
	ExecutionID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	AssetID            uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Status             depreciation.DetailStatus `gorm:"type:varchar(20);not null"`
	DepreciationAmount decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	BookValueBefore    decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	BookValueAfter     decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	PeriodsPosted      int                       `gorm:"not null;default:0"`
	ErrorMessage       *string                   `gorm:"type:text"`
	CreatedAt          time.Time                 `gorm:"not null"`

	// Joined asset identity, populated by history queries only
	ItemCode         string `gorm:"->;-:migration"`
	AssetDescription string `gorm:"->;-:migration"`
	CategoryName     string `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (AssetDepreciationDetailModel) TableName() string {
	return "asset_depreciation_details"
}

// ToDomain converts the persistence model to a domain detail row
func (m *AssetDepreciationDetailModel) ToDomain() depreciation.AssetDepreciationDetail {
	return depreciation.AssetDepreciationDetail{
		ID:                 m.ID,
		ExecutionID:        m.ExecutionID,
		AssetID:            m.AssetID,
		Status:             m.Status,
		DepreciationAmount: m.DepreciationAmount,
		BookValueBefore:    m.BookValueBefore,
		BookValueAfter:     m.BookValueAfter,
		PeriodsPosted:      m.PeriodsPosted,
		ErrorMessage:       m.ErrorMessage,
		CreatedAt:          m.CreatedAt,
	}
}

// ToView converts the joined row to a display view
func (m *AssetDepreciationDetailModel) ToView() depreciation.DetailView {
	return depreciation.DetailView{
		AssetDepreciationDetail: m.ToDomain(),
		ItemCode:                m.ItemCode,
		Description:             m.AssetDescription,
		CategoryName:            m.CategoryName,
	}
}

// AssetDepreciationDetailModelFromDomain creates a persistence model from a detail row
func AssetDepreciationDetailModelFromDomain(d depreciation.AssetDepreciationDetail) *AssetDepreciationDetailModel {
	return &AssetDepreciationDetailModel{
		ID:                 d.ID,
		ExecutionID:        d.ExecutionID,
		AssetID:            d.AssetID,
		Status:             d.Status,
		DepreciationAmount: d.DepreciationAmount,
		BookValueBefore:    d.BookValueBefore,
		BookValueAfter:     d.BookValueAfter,
		PeriodsPosted:      d.PeriodsPosted,
		ErrorMessage:       d.ErrorMessage,
		CreatedAt:          d.CreatedAt,
	}
}

// AssetDepreciationModel is one ledger entry. The unique index on asset and
// period is what makes posting idempotent.
type AssetDepreciationModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	AssetID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_asset_depreciation_period,priority:1"`
	PeriodYear         int             `gorm:"not null;uniqueIndex:idx_asset_depreciation_period,priority:2"`
	PeriodMonth        int             `gorm:"not null;uniqueIndex:idx_asset_depreciation_period,priority:3"`
	ExecutionID        *uuid.UUID      `gorm:"type:uuid;index"`
	DepreciationDate   time.Time       `gorm:"not null"`
	DepreciationAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BookValueStart     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BookValueEnd       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method             string          `gorm:"type:varchar(30);not null"`
	CreatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AssetDepreciationModel) TableName() string {
	return "asset_depreciations"
}

// ToDomain converts the persistence model to a domain ledger entry
func (m *AssetDepreciationModel) ToDomain() depreciation.LedgerEntry {
	return depreciation.LedgerEntry{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		AssetID:            m.AssetID,
		ExecutionID:        m.ExecutionID,
		DepreciationDate:   m.DepreciationDate,
		PeriodYear:         m.PeriodYear,
		PeriodMonth:        m.PeriodMonth,
		DepreciationAmount: m.DepreciationAmount,
		BookValueStart:     m.BookValueStart,
		BookValueEnd:       m.BookValueEnd,
		Method:             depreciation.Method(m.Method),
		CreatedAt:          m.CreatedAt,
	}
}

// AssetDepreciationModelFromDomain creates a persistence model from a ledger entry
func AssetDepreciationModelFromDomain(l depreciation.LedgerEntry) *AssetDepreciationModel {
	return &AssetDepreciationModel{
		ID:                 l.ID,
		TenantID:           l.TenantID,
		AssetID:            l.AssetID,
		PeriodYear:         l.PeriodYear,
		PeriodMonth:        l.PeriodMonth,
		ExecutionID:        l.ExecutionID,
		DepreciationDate:   l.DepreciationDate,
		DepreciationAmount: l.DepreciationAmount,
		BookValueStart:     l.BookValueStart,
		BookValueEnd:       l.BookValueEnd,
		Method:             string(l.Method),
		CreatedAt:          l.CreatedAt,
	}
}

// AssetUsageReadingModel stores units produced per asset per period
type AssetUsageReadingModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	AssetID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_asset_usage_period,priority:1"`
	Year      int             `gorm:"not null;uniqueIndex:idx_asset_usage_period,priority:2"`
	Month     int             `gorm:"not null;uniqueIndex:idx_asset_usage_period,priority:3"`
	Units     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AssetUsageReadingModel) TableName() string {
	return "asset_usage_readings"
}

// ToDomain converts the persistence model to a domain usage reading
func (m *AssetUsageReadingModel) ToDomain() depreciation.UsageReading {
	return depreciation.UsageReading{
		ID:        m.ID,
		TenantID:  m.TenantID,
		AssetID:   m.AssetID,
		Year:      m.Year,
		Month:     m.Month,
		Units:     m.Units,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// AssetUsageReadingModelFromDomain creates a persistence model from a usage reading
func AssetUsageReadingModelFromDomain(r *depreciation.UsageReading) *AssetUsageReadingModel {
	return &AssetUsageReadingModel{
		ID:        r.ID,
		TenantID:  r.TenantID,
		AssetID:   r.AssetID,
		Year:      r.Year,
		Month:     r.Month,
		Units:     r.Units,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
