package controller

import (
	"sems_backend/internal/config"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/service"
	"sems_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService    *service.ExamService
	AttemptService *service.AttemptService
	ImportService  *service.ImportService
	Config         *config.Config
}

func NewExamController(examService *service.ExamService, attemptService *service.AttemptService, importService *service.ImportService, cfg *config.Config) *ExamController {
	return &ExamController{
		ExamService:    examService,
		AttemptService: attemptService,
		ImportService:  importService,
		Config:         cfg,
	}
}

// ReportQuestionRequest
// swagger:model ReportQuestionRequest
type ReportQuestionRequest struct {
	Message string `json:"message" example:"Two answers look correct"`
}

// SubmitResponse wraps the recorded result.
type SubmitResponse struct {
	Result *model.Result `json:"result"`
}

// List godoc
// @Summary List exam templates
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param subject_id query int false "subject filter"
// @Param active query bool false "only active templates"
// @Success 200 {array} service.ExamListItem
// @Router /api/exams [get]
func (c *ExamController) List(ctx *gin.Context) {
	subjectID, err := util.QueryUint(ctx, "subject_id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	activeOnly, _ := strconv.ParseBool(ctx.Query("active"))

	items, err := c.ExamService.List(ctx.Request.Context(), repository.ExamFilter{SubjectID: subjectID, ActiveOnly: activeOnly})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// Get godoc
// @Summary Get an exam template with its questions
// @Description is_correct is omitted for students
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} service.ExamView
// @Failure 404 {object} util.ErrorResponse
// @Router /api/exams/{id} [get]
func (c *ExamController) Get(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	exam, err := c.ExamService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, service.NewExamView(exam, !util.IsStudent(ctx)))
}

// Questions godoc
// @Summary List the questions of an exam
// @Description is_correct is omitted for students
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {array} service.QuestionView
// @Router /api/exams/{id}/questions [get]
func (c *ExamController) Questions(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	questions, err := c.ExamService.ListQuestions(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	withKey := !util.IsStudent(ctx)
	views := make([]service.QuestionView, 0, len(questions))
	for i := range questions {
		views = append(views, service.NewQuestionView(&questions[i], withKey))
	}
	util.Success(ctx, views)
}

// Start godoc
// @Summary Start an exam
// @Description Students are checked for reattempt eligibility and get the exam without the answer key; staff get a keyed preview
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} service.ExamView
// @Failure 403 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/exams/{id}/start [post]
func (c *ExamController) Start(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	claims := util.GetUserFromContext(ctx)
	view, err := c.ExamService.Start(ctx.Request.Context(), id, claims.UserID, util.IsStudent(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary Submit answers
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.SubmitRequest true "answers"
// @Success 201 {object} SubmitResponse
// @Failure 400 {object} util.ErrorResponse
// @Failure 403 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/exams/{id}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.AttemptService.SubmitStudent(ctx.Request.Context(), id, claims.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, SubmitResponse{Result: result})
}

// MyResults godoc
// @Summary Results of the calling student
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.MyResult
// @Router /api/exams/my/results [get]
func (c *ExamController) MyResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	results, err := c.AttemptService.MyResults(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// ReportQuestion godoc
// @Summary Flag a question
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param questionId path int true "question id"
// @Param body body ReportQuestionRequest false "message"
// @Success 201 {object} model.QuestionReport
// @Failure 404 {object} util.ErrorResponse
// @Router /api/exams/{id}/questions/{questionId}/report [post]
func (c *ExamController) ReportQuestion(ctx *gin.Context) {
	examID, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	questionID, err := util.ParamID(ctx, "questionId")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req ReportQuestionRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BindError(ctx, err)
			return
		}
	}

	claims := util.GetUserFromContext(ctx)
	report, err := c.ExamService.ReportQuestion(ctx.Request.Context(), examID, questionID, claims.UserID, req.Message)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, report)
}

// Create godoc
// @Summary Create an exam template
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamInput true "exam"
// @Success 201 {object} model.ExamTemplate
// @Failure 400 {object} util.ErrorResponse
// @Router /api/exams [post]
func (c *ExamController) Create(ctx *gin.Context) {
	var req service.ExamInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	exam, err := c.ExamService.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// Update godoc
// @Summary Update an exam template
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.ExamInput true "exam"
// @Success 200 {object} model.ExamTemplate
// @Router /api/exams/{id} [put]
func (c *ExamController) Update(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ExamInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	exam, err := c.ExamService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// Delete godoc
// @Summary Delete an exam template
// @Description Also removes its questions, answers, results and question reports
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.MessageResponse
// @Router /api/exams/{id} [delete]
func (c *ExamController) Delete(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.ExamService.Delete(ctx.Request.Context(), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "exam deleted")
}

// AddQuestion godoc
// @Summary Add a question
// @Description Requires at least two answers and exactly one correct answer
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.QuestionInput true "question"
// @Success 201 {object} model.Question
// @Failure 400 {object} util.ErrorResponse
// @Router /api/exams/{id}/questions [post]
func (c *ExamController) AddQuestion(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	question, err := c.ExamService.AddQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary Update a question and replace its answers
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param questionId path int true "question id"
// @Param body body service.QuestionInput true "question"
// @Success 200 {object} model.Question
// @Router /api/exams/{id}/questions/{questionId} [put]
func (c *ExamController) UpdateQuestion(ctx *gin.Context) {
	examID, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	questionID, err := util.ParamID(ctx, "questionId")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	question, err := c.ExamService.UpdateQuestion(ctx.Request.Context(), examID, questionID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param questionId path int true "question id"
// @Success 200 {object} util.MessageResponse
// @Router /api/exams/{id}/questions/{questionId} [delete]
func (c *ExamController) DeleteQuestion(ctx *gin.Context) {
	examID, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	questionID, err := util.ParamID(ctx, "questionId")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.ExamService.DeleteQuestion(ctx.Request.Context(), examID, questionID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Message(ctx, "question deleted")
}

// ImportQuestions godoc
// @Summary Import questions from xlsx
// @Description Accepted rows are inserted in one transaction; rejected rows are listed. replace=true clears existing questions first
// @Tags exams
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param file formData file true "xlsx workbook"
// @Param replace formData bool false "replace existing questions"
// @Success 200 {object} service.ImportSummary
// @Failure 400 {object} util.ErrorResponse
// @Router /api/exams/{id}/import-questions [post]
func (c *ExamController) ImportQuestions(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	upload, err := readUpload(ctx, c.Config.Import.MaxUploadMB)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	replace, _ := strconv.ParseBool(ctx.PostForm("replace"))

	summary, err := c.ImportService.ImportQuestions(ctx.Request.Context(), id, upload, replace)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// QuestionReports godoc
// @Summary Question reports raised against an exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {array} model.QuestionReport
// @Router /api/exams/{id}/reports [get]
func (c *ExamController) QuestionReports(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	reports, err := c.ExamService.ListQuestionReports(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, reports)
}

// ImportLogs godoc
// @Summary Question imports recorded for an exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {array} model.ImportLog
// @Router /api/exams/{id}/import-logs [get]
func (c *ExamController) ImportLogs(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	logs, err := c.ImportService.ImportLogs(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, logs)
}
