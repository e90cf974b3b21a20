package router

import (
	depreciationapp "github.com/erp/depreciation/internal/application/depreciation"
	"github.com/erp/depreciation/internal/interfaces/http/handler"
	"github.com/erp/depreciation/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the depreciation endpoints served under /api/v1
type Handlers struct {
	Schedules  *handler.ScheduleHandler
	Executions *handler.ExecutionHandler
	Assets     *handler.AssetHandler
}

// NewDepreciationRoutes builds the /depreciation route group. Services that
// receive an actor check permissions themselves; due work and projections
// take only a business unit, so their routes are guarded here.
func NewDepreciationRoutes(h Handlers, log *zap.Logger) *DomainGroup {
	canView := middleware.RequireAnyPermissionWithConfig(
		middleware.PermissionConfig{Logger: log},
		depreciationapp.PermissionView,
		depreciationapp.PermissionManage,
	)

	g := NewDomainGroup("/depreciation")

	g.Group("/schedules").
		POST("", h.Schedules.Create).
		GET("", h.Schedules.List).
		GET("/:id", h.Schedules.Get).
		PUT("/:id", h.Schedules.Update).
		DELETE("/:id", h.Schedules.Delete).
		POST("/:id/toggle", h.Schedules.Toggle).
		POST("/:id/activate", h.Schedules.Activate).
		POST("/:id/deactivate", h.Schedules.Deactivate).
		POST("/:id/run", h.Schedules.Run)

	g.Group("/executions").
		POST("/manual", h.Schedules.RunManual).
		GET("", h.Executions.List).
		GET("/summary", h.Executions.Summary).
		GET("/running", h.Executions.Running).
		GET("/:id", h.Executions.Get)

	g.GET("/due", canView, h.Assets.Due)

	g.Group("/assets").
		GET("/:id/projection", canView, h.Assets.Projection).
		POST("/:id/usage", h.Assets.RecordUsage).
		GET("/:id/usage", h.Assets.ListUsage)

	return g
}
