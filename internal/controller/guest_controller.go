package controller

import (
	"sems_backend/internal/repository"
	"sems_backend/internal/service"
	"sems_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GuestController serves unauthenticated self-assessment attempts.
type GuestController struct {
	ExamService    *service.ExamService
	AttemptService *service.AttemptService
}

func NewGuestController(examService *service.ExamService, attemptService *service.AttemptService) *GuestController {
	return &GuestController{ExamService: examService, AttemptService: attemptService}
}

// List godoc
// @Summary Active exams open to guests
// @Tags guest
// @Produce json
// @Success 200 {array} service.ExamListItem
// @Router /api/guest/exams [get]
func (c *GuestController) List(ctx *gin.Context) {
	items, err := c.ExamService.List(ctx.Request.Context(), repository.ExamFilter{ActiveOnly: true})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// Start godoc
// @Summary Start an exam as a guest
// @Tags guest
// @Produce json
// @Param id path int true "exam id"
// @Success 200 {object} service.ExamView
// @Failure 403 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/guest/exams/{id}/start [get]
func (c *GuestController) Start(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	view, err := c.ExamService.StartForGuest(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary Submit answers as a guest
// @Tags guest
// @Accept json
// @Produce json
// @Param id path int true "exam id"
// @Param body body service.GuestSubmitRequest true "answers and guest name"
// @Success 201 {object} SubmitResponse
// @Failure 400 {object} util.ErrorResponse
// @Router /api/guest/exams/{id}/submit [post]
func (c *GuestController) Submit(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.GuestSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	result, err := c.AttemptService.SubmitGuest(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, SubmitResponse{Result: result})
}
