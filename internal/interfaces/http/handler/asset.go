package handler

import (
	"context"
	"time"

	depreciationapp "github.com/erp/depreciation/internal/application/depreciation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DueWorkService reports assets awaiting depreciation
type DueWorkService interface {
	Count(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*depreciationapp.DueWorkResponse, error)
}

// ProjectionService projects an asset's depreciation schedule
type ProjectionService interface {
	Project(ctx context.Context, tenantID, assetID uuid.UUID, asOf time.Time) (*depreciationapp.ProjectionResponse, error)
}

// UsageService records production units for units of production assets
type UsageService interface {
	Record(ctx context.Context, actor depreciationapp.Actor, assetID uuid.UUID, req depreciationapp.RecordUsageRequest) (*depreciationapp.UsageReadingResponse, error)
	List(ctx context.Context, actor depreciationapp.Actor, assetID uuid.UUID) ([]depreciationapp.UsageReadingResponse, error)
}

// AssetHandler handles the asset facing depreciation endpoints
type AssetHandler struct {
	BaseHandler
	due        DueWorkService
	projection ProjectionService
	usage      UsageService
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(due DueWorkService, projection ProjectionService, usage UsageService) *AssetHandler {
	return &AssetHandler{due: due, projection: projection, usage: usage}
}

// Due godoc
// @ID           listDueDepreciation
// @Summary      Assets due for depreciation
// @Description  Lists the assets whose next depreciation date has been reached. count_only=true skips the list.
// @Tags         depreciation-assets
// @Produce      json
// @Param        as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Param        count_only query bool false "Return only the count"
// @Success      200 {object} APIResponse[depreciationapp.DueWorkResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/due [get]
func (h *AssetHandler) Due(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		h.BadRequest(c, "as_of must be a date in YYYY-MM-DD format")
		return
	}

	if c.Query("count_only") == "true" {
		count, err := h.due.Count(c.Request.Context(), tenant, asOf)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, CountData{Count: count})
		return
	}

	resp, err := h.due.List(c.Request.Context(), tenant, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Projection godoc
// @ID           getDepreciationProjection
// @Summary      Month by month depreciation projection of an asset
// @Tags         depreciation-assets
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Param        as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[depreciationapp.ProjectionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/assets/{id}/projection [get]
func (h *AssetHandler) Projection(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	assetID, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		h.BadRequest(c, "as_of must be a date in YYYY-MM-DD format")
		return
	}

	resp, err := h.projection.Project(c.Request.Context(), tenant, assetID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordUsage godoc
// @ID           recordAssetUsage
// @Summary      Record the production units of an asset for a month
// @Description  A second reading for the same month replaces the first
// @Tags         depreciation-assets
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Param        request body depreciationapp.RecordUsageRequest true "Usage reading"
// @Success      200 {object} APIResponse[depreciationapp.UsageReadingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/assets/{id}/usage [post]
func (h *AssetHandler) RecordUsage(c *gin.Context) {
	assetID, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}

	var req depreciationapp.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	reading, err := h.usage.Record(c.Request.Context(), actor(c), assetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reading)
}

// ListUsage godoc
// @ID           listAssetUsage
// @Summary      List the usage readings of an asset
// @Tags         depreciation-assets
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Success      200 {object} APIResponse[[]depreciationapp.UsageReadingResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/assets/{id}/usage [get]
func (h *AssetHandler) ListUsage(c *gin.Context) {
	assetID, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid asset ID format")
		return
	}

	readings, err := h.usage.List(c.Request.Context(), actor(c), assetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, readings)
}
