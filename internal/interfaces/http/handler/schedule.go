package handler

import (
	"context"
	"errors"
	"io"
	"time"

	depreciationapp "github.com/erp/depreciation/internal/application/depreciation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScheduleService manages depreciation schedules
type ScheduleService interface {
	Create(ctx context.Context, actor depreciationapp.Actor, req depreciationapp.CreateScheduleRequest) (*depreciationapp.ScheduleResponse, error)
	Update(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID, req depreciationapp.UpdateScheduleRequest) (*depreciationapp.ScheduleResponse, error)
	Delete(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) error
	Toggle(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) (*depreciationapp.ScheduleResponse, error)
	SetActive(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID, active bool) (*depreciationapp.ScheduleResponse, error)
	Get(ctx context.Context, actor depreciationapp.Actor, id uuid.UUID) (*depreciationapp.ScheduleResponse, error)
	List(ctx context.Context, actor depreciationapp.Actor, filter depreciationapp.ScheduleListFilter) ([]depreciationapp.ScheduleResponse, int64, error)
}

// RunTrigger starts depreciation runs on demand
type RunTrigger interface {
	TriggerSchedule(ctx context.Context, actor depreciationapp.Actor, scheduleID uuid.UUID, runDate time.Time) (*depreciationapp.TriggerResponse, error)
	TriggerManual(ctx context.Context, actor depreciationapp.Actor, runDate time.Time) (*depreciationapp.TriggerResponse, error)
}

// ScheduleHandler handles depreciation schedule endpoints
type ScheduleHandler struct {
	BaseHandler
	schedules ScheduleService
	runs      RunTrigger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(schedules ScheduleService, runs RunTrigger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, runs: runs}
}

// Create godoc
// @ID           createDepreciationSchedule
// @Summary      Create depreciation schedule
// @Tags         depreciation-schedules
// @Accept       json
// @Produce      json
// @Param        request body depreciationapp.CreateScheduleRequest true "Schedule"
// @Success      201 {object} APIResponse[depreciationapp.ScheduleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req depreciationapp.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	schedule, err := h.schedules.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, schedule)
}

// List godoc
// @ID           listDepreciationSchedules
// @Summary      List depreciation schedules
// @Tags         depreciation-schedules
// @Produce      json
// @Param        search query string false "Name search"
// @Param        schedule_type query string false "MONTHLY, QUARTERLY or ANNUALLY"
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]depreciationapp.ScheduleResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter depreciationapp.ScheduleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.schedules.List(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getDepreciationSchedule
// @Summary      Get depreciation schedule
// @Tags         depreciation-schedules
// @Produce      json
// @Param        id path string true "Schedule ID" format(uuid)
// @Success      200 {object} APIResponse[depreciationapp.ScheduleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid schedule ID format")
		return
	}

	schedule, err := h.schedules.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// Update godoc
// @ID           updateDepreciationSchedule
// @Summary      Update depreciation schedule
// @Tags         depreciation-schedules
// @Accept       json
// @Produce      json
// @Param        id path string true "Schedule ID" format(uuid)
// @Param        request body depreciationapp.UpdateScheduleRequest true "Schedule"
// @Success      200 {object} APIResponse[depreciationapp.ScheduleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid schedule ID format")
		return
	}

	var req depreciationapp.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	schedule, err := h.schedules.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// Delete godoc
// @ID           deleteDepreciationSchedule
// @Summary      Delete depreciation schedule
// @Description  Execution history of the schedule is kept
// @Tags         depreciation-schedules
// @Param        id path string true "Schedule ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid schedule ID format")
		return
	}

	if err := h.schedules.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Toggle godoc
// @ID           toggleDepreciationSchedule
// @Summary      Flip a schedule between active and inactive
// @Tags         depreciation-schedules
// @Produce      json
// @Param        id path string true "Schedule ID" format(uuid)
// @Success      200 {object} APIResponse[depreciationapp.ScheduleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id}/toggle [post]
func (h *ScheduleHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid schedule ID format")
		return
	}

	schedule, err := h.schedules.Toggle(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// Activate godoc
// @ID           activateDepreciationSchedule
// @Summary      Activate depreciation schedule
// @Tags         depreciation-schedules
// @Produce      json
// @Param        id path string true "Schedule ID" format(uuid)
// @Success      200 {object} APIResponse[depreciationapp.ScheduleResponse]
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id}/activate [post]
func (h *ScheduleHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// @ID           deactivateDepreciationSchedule
// @Summary      Deactivate depreciation schedule
// @Tags         depreciation-schedules
// @Produce      json
// @Param        id path string true "Schedule ID" format(uuid)
// @Success      200 {object} APIResponse[depreciationapp.ScheduleResponse]
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id}/deactivate [post]
func (h *ScheduleHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *ScheduleHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid schedule ID format")
		return
	}

	schedule, err := h.schedules.SetActive(c.Request.Context(), actor(c), id, active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// Run godoc
// @ID           runDepreciationSchedule
// @Summary      Run a schedule now
// @Description  Starts a run of the schedule under its execution lock and returns once it is RUNNING
// @Tags         depreciation-schedules
// @Accept       json
// @Produce      json
// @Param        id path string true "Schedule ID" format(uuid)
// @Param        request body depreciationapp.ManualRunRequest false "Run date, defaults to today"
// @Success      202 {object} APIResponse[depreciationapp.TriggerResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id}/run [post]
func (h *ScheduleHandler) Run(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid schedule ID format")
		return
	}

	runDate, ok := h.bindRunDate(c)
	if !ok {
		return
	}

	resp, err := h.runs.TriggerSchedule(c.Request.Context(), actor(c), id, runDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// RunManual godoc
// @ID           runDepreciationManual
// @Summary      Start an ad-hoc depreciation run
// @Description  Runs every due asset of the business unit regardless of schedules
// @Tags         depreciation-executions
// @Accept       json
// @Produce      json
// @Param        request body depreciationapp.ManualRunRequest false "Run date, defaults to today"
// @Success      202 {object} APIResponse[depreciationapp.TriggerResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /depreciation/executions/manual [post]
func (h *ScheduleHandler) RunManual(c *gin.Context) {
	runDate, ok := h.bindRunDate(c)
	if !ok {
		return
	}

	resp, err := h.runs.TriggerManual(c.Request.Context(), actor(c), runDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// bindRunDate reads the optional run date body. An empty body runs as of now.
func (h *ScheduleHandler) bindRunDate(c *gin.Context) (time.Time, bool) {
	var req depreciationapp.ManualRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return time.Time{}, false
	}
	if req.RunDate == nil {
		return time.Now().UTC(), true
	}
	return req.RunDate.UTC(), true
}
