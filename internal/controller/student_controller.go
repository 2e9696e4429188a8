package controller

import (
	"sems_backend/internal/config"
	"sems_backend/internal/repository"
	"sems_backend/internal/service"
	"sems_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
	ImportService  *service.ImportService
	Config         *config.Config
}

func NewStudentController(studentService *service.StudentService, importService *service.ImportService, cfg *config.Config) *StudentController {
	return &StudentController{
		StudentService: studentService,
		ImportService:  importService,
		Config:         cfg,
	}
}

// List godoc
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param search query string false "name, student number or national id"
// @Param section_id query int false "section filter"
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.PageResponse
// @Router /api/students [get]
func (c *StudentController) List(ctx *gin.Context) {
	sectionID, err := util.QueryUint(ctx, "section_id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	page, limit := util.Pagination(ctx)

	students, total, err := c.StudentService.List(ctx.Request.Context(), repository.StudentFilter{
		Search:    ctx.Query("search"),
		SectionID: sectionID,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPageResponse(students, total, page, limit))
}

// Get godoc
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "student id"
// @Success 200 {object} model.StudentProfile
// @Failure 404 {object} util.ErrorResponse
// @Router /api/students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	student, err := c.StudentService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// Create godoc
// @Summary Create a student with its login
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StudentInput true "student"
// @Success 201 {object} model.StudentProfile
// @Failure 409 {object} util.ErrorResponse
// @Router /api/students [post]
func (c *StudentController) Create(ctx *gin.Context) {
	var req service.StudentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	student, err := c.StudentService.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, student)
}

// Update godoc
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "student id"
// @Param body body service.StudentUpdateInput true "changes"
// @Success 200 {object} model.StudentProfile
// @Router /api/students/{id} [put]
func (c *StudentController) Update(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.StudentUpdateInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	student, err := c.StudentService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// Delete godoc
// @Summary Delete a student and its login
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "student id"
// @Success 200 {object} util.MessageResponse
// @Router /api/students/{id} [delete]
func (c *StudentController) Delete(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.StudentService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "student deleted")
}

// Import godoc
// @Summary Import students from xlsx
// @Description Rows failing validation are reported; the rest are created
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "xlsx workbook"
// @Param section_id formData int false "section for all imported students"
// @Success 200 {object} service.ImportSummary
// @Failure 400 {object} util.ErrorResponse
// @Router /api/students/import [post]
func (c *StudentController) Import(ctx *gin.Context) {
	upload, err := readUpload(ctx, c.Config.Import.MaxUploadMB)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var sectionID *uint
	if raw := ctx.PostForm("section_id"); raw != "" {
		id := util.MustParseUint(raw)
		if id == 0 {
			util.HandleError(ctx, util.NewValidationError("invalid section_id: %q", raw))
			return
		}
		sectionID = &id
	}

	summary, err := c.ImportService.ImportStudents(ctx.Request.Context(), sectionID, upload)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}
