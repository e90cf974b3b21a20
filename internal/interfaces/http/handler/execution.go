package handler

import (
	"context"

	depreciationapp "github.com/erp/depreciation/internal/application/depreciation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HistoryService answers queries over past and running executions
type HistoryService interface {
	List(ctx context.Context, actor depreciationapp.Actor, filter depreciationapp.ExecutionListFilter) ([]depreciationapp.ExecutionResponse, int64, error)
	Get(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) (*depreciationapp.ExecutionDetailResponse, error)
	Summary(ctx context.Context, actor depreciationapp.Actor) (*depreciationapp.SummaryResponse, error)
	Running(ctx context.Context, actor depreciationapp.Actor) ([]depreciationapp.ExecutionResponse, error)
}

// ExecutionHandler handles depreciation execution history endpoints
type ExecutionHandler struct {
	BaseHandler
	history HistoryService
}

// NewExecutionHandler creates a new ExecutionHandler
func NewExecutionHandler(history HistoryService) *ExecutionHandler {
	return &ExecutionHandler{history: history}
}

// List godoc
// @ID           listDepreciationExecutions
// @Summary      List depreciation executions
// @Tags         depreciation-executions
// @Produce      json
// @Param        status query string false "PENDING, RUNNING, COMPLETED, COMPLETED_WITH_ERRORS or FAILED"
// @Param        date_from query string false "First execution date (YYYY-MM-DD)"
// @Param        date_to query string false "Last execution date (YYYY-MM-DD)"
// @Param        schedule_id query string false "Schedule ID" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]depreciationapp.ExecutionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/executions [get]
func (h *ExecutionHandler) List(c *gin.Context) {
	var filter depreciationapp.ExecutionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.history.List(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getDepreciationExecution
// @Summary      Get a depreciation execution with its per-asset outcomes
// @Tags         depreciation-executions
// @Produce      json
// @Param        id path string true "Execution ID" format(uuid)
// @Success      200 {object} APIResponse[depreciationapp.ExecutionDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/executions/{id} [get]
func (h *ExecutionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid execution ID format")
		return
	}

	detail, err := h.history.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Summary godoc
// @ID           getDepreciationExecutionSummary
// @Summary      Lifetime execution totals of the business unit
// @Tags         depreciation-executions
// @Produce      json
// @Success      200 {object} APIResponse[depreciationapp.SummaryResponse]
// @Security     BearerAuth
// @Router       /depreciation/executions/summary [get]
func (h *ExecutionHandler) Summary(c *gin.Context) {
	summary, err := h.history.Summary(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Running godoc
// @ID           listRunningDepreciationExecutions
// @Summary      List executions still in progress
// @Tags         depreciation-executions
// @Produce      json
// @Success      200 {object} APIResponse[[]depreciationapp.ExecutionResponse]
// @Security     BearerAuth
// @Router       /depreciation/executions/running [get]
func (h *ExecutionHandler) Running(c *gin.Context) {
	items, err := h.history.Running(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
