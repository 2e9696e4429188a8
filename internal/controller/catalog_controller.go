package controller

import (
	"sems_backend/internal/service"
	"sems_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubjectController struct {
	SubjectService *service.SubjectService
}

func NewSubjectController(subjectService *service.SubjectService) *SubjectController {
	return &SubjectController{SubjectService: subjectService}
}

// List godoc
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Subject
// @Router /api/subjects [get]
func (c *SubjectController) List(ctx *gin.Context) {
	subjects, err := c.SubjectService.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// Get godoc
// @Summary Get a subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "subject id"
// @Success 200 {object} model.Subject
// @Failure 404 {object} util.ErrorResponse
// @Router /api/subjects/{id} [get]
func (c *SubjectController) Get(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	subject, err := c.SubjectService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// Create godoc
// @Summary Create a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CatalogInput true "subject"
// @Success 201 {object} model.Subject
// @Failure 409 {object} util.ErrorResponse
// @Router /api/subjects [post]
func (c *SubjectController) Create(ctx *gin.Context) {
	var req service.CatalogInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	subject, err := c.SubjectService.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// Update godoc
// @Summary Update a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "subject id"
// @Param body body service.CatalogInput true "subject"
// @Success 200 {object} model.Subject
// @Router /api/subjects/{id} [put]
func (c *SubjectController) Update(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.CatalogInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	subject, err := c.SubjectService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// Delete godoc
// @Summary Delete a subject
// @Description Refused with 409 while exam templates still belong to it
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "subject id"
// @Success 200 {object} util.MessageResponse
// @Failure 409 {object} util.ErrorResponse
// @Router /api/subjects/{id} [delete]
func (c *SubjectController) Delete(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.SubjectService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "subject deleted")
}

type SectionController struct {
	SectionService *service.SectionService
}

func NewSectionController(sectionService *service.SectionService) *SectionController {
	return &SectionController{SectionService: sectionService}
}

// List godoc
// @Summary List sections
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Section
// @Router /api/sections [get]
func (c *SectionController) List(ctx *gin.Context) {
	sections, err := c.SectionService.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// Get godoc
// @Summary Get a section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "section id"
// @Success 200 {object} model.Section
// @Router /api/sections/{id} [get]
func (c *SectionController) Get(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	section, err := c.SectionService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// Create godoc
// @Summary Create a section
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CatalogInput true "section"
// @Success 201 {object} model.Section
// @Router /api/sections [post]
func (c *SectionController) Create(ctx *gin.Context) {
	var req service.CatalogInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	section, err := c.SectionService.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// Update godoc
// @Summary Update a section
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "section id"
// @Param body body service.CatalogInput true "section"
// @Success 200 {object} model.Section
// @Router /api/sections/{id} [put]
func (c *SectionController) Update(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.CatalogInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	section, err := c.SectionService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// Delete godoc
// @Summary Delete a section
// @Description Students of the section are kept and left without a section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "section id"
// @Success 200 {object} util.MessageResponse
// @Router /api/sections/{id} [delete]
func (c *SectionController) Delete(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.SectionService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "section deleted")
}
