package controller

import (
	"errors"
	"fmt"
	"net/http"
	"sems_backend/internal/model"
	"sems_backend/internal/service"
	"sems_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

func reportFilter(ctx *gin.Context) (model.ReportFilter, error) {
	var f model.ReportFilter
	var err error
	if f.SectionID, err = util.QueryUint(ctx, "section_id"); err != nil {
		return f, err
	}
	if f.SubjectID, err = util.QueryUint(ctx, "subject_id"); err != nil {
		return f, err
	}
	if f.StudentID, err = util.QueryUint(ctx, "student_id"); err != nil {
		return f, err
	}
	return f, nil
}

// Performance godoc
// @Summary Average percentage and attempt count per subject
// @Description Guest attempts are excluded
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param section_id query int false "section filter"
// @Param subject_id query int false "subject filter"
// @Success 200 {array} model.SubjectStat
// @Router /api/reports/performance [get]
func (c *ReportController) Performance(ctx *gin.Context) {
	f, err := reportFilter(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	stats, err := c.ReportService.OverallStats(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// Sections godoc
// @Summary Sections ranked by average percentage
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.SectionRank
// @Router /api/reports/sections [get]
func (c *ReportController) Sections(ctx *gin.Context) {
	ranks, err := c.ReportService.SectionRanking(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, ranks)
}

// Students godoc
// @Summary Flat result rows, newest first
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param section_id query int false "section filter"
// @Param subject_id query int false "subject filter"
// @Param student_id query int false "student filter"
// @Success 200 {array} model.StudentReportRow
// @Router /api/reports/students [get]
func (c *ReportController) Students(ctx *gin.Context) {
	f, err := reportFilter(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	rows, err := c.ReportService.StudentReports(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// ExportExcel godoc
// @Summary Export student report rows as xlsx
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param section_id query int false "section filter"
// @Param subject_id query int false "subject filter"
// @Param student_id query int false "student filter"
// @Success 200 {file} file
// @Router /api/reports/export/excel [get]
func (c *ReportController) ExportExcel(ctx *gin.Context) {
	f, err := reportFilter(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	buf, err := c.ReportService.ExportExcel(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	name := fmt.Sprintf("report-%s.xlsx", time.Now().Format(util.DateFormat))
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Data(http.StatusOK, util.MimeXLSX, buf.Bytes())
}

// ExportPDF godoc
// @Summary Export as PDF (not available)
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Failure 501 {object} util.ErrorResponse
// @Router /api/reports/export/pdf [get]
func (c *ReportController) ExportPDF(ctx *gin.Context) {
	f, err := reportFilter(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.ReportService.ExportPDF(ctx.Request.Context(), f); err != nil {
		if errors.Is(err, util.ErrNotImplemented) {
			util.Error(ctx, http.StatusNotImplemented, "pdf export is not available")
			return
		}
		util.HandleError(ctx, err)
	}
}
