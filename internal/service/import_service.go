package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"sems_backend/pkg/logger"
	"sems_backend/pkg/monitoring"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RowError describes why one spreadsheet row was skipped. Row is 1-based as shown in the sheet.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportSummary struct {
	Success  int        `json:"success"`
	Rejected int        `json:"rejected"`
	Errors   []RowError `json:"errors"`
	FileURL  string     `json:"file_url,omitempty"`
	LogID    uint       `json:"log_id,omitempty"`
}

// ImportUpload is a spreadsheet received from a client.
type ImportUpload struct {
	FileName   string
	Data       []byte
	UploadedBy uint
}

type ImportService struct {
	DB       *gorm.DB
	ExamRepo *repository.ExamRepository
	LogRepo  *repository.ImportLogRepository
	Students *StudentService
	Storage  *StorageService
}

func NewImportService(db *gorm.DB, examRepo *repository.ExamRepository, logRepo *repository.ImportLogRepository, students *StudentService, storage *StorageService) *ImportService {
	return &ImportService{
		DB:       db,
		ExamRepo: examRepo,
		LogRepo:  logRepo,
		Students: students,
		Storage:  storage,
	}
}

// readSheet returns the rows of the workbook's first sheet.
func readSheet(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, util.NewValidationError("file is not a readable xlsx workbook")
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, util.NewValidationError("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, util.NewValidationError("spreadsheet has no data rows")
	}
	return rows, nil
}

// parseQuestionRow builds a question from one row, dropping blank and "0" choices.
// The correct marker names an original answer column, which must be non-blank.
func parseQuestionRow(row []string, columns map[importField]int) (*model.Question, error) {
	text := cell(row, columns, fieldQuestionText)
	if text == "" {
		return nil, errors.New("question text is empty")
	}

	var answers []model.AnswerChoice
	kept := make(map[int]int, len(answerFields))
	for i, field := range answerFields {
		value := cell(row, columns, field)
		if value == "" || value == "0" {
			continue
		}
		kept[i] = len(answers)
		answers = append(answers, model.AnswerChoice{AnswerText: value, SortOrder: len(answers)})
	}
	if len(answers) < 2 {
		return nil, errors.New("at least 2 answer choices are required")
	}

	marker := cell(row, columns, fieldCorrect)
	idx, ok := parseCorrectMarker(marker)
	if !ok {
		return nil, fmt.Errorf("unrecognised correct answer %q", marker)
	}
	pos, ok := kept[idx]
	if !ok {
		return nil, fmt.Errorf("correct answer %q points at an empty choice", marker)
	}
	answers[pos].IsCorrect = true

	return &model.Question{QuestionText: text, Answers: answers}, nil
}

// ImportQuestions adds every valid row of the sheet to the exam in one transaction.
// With replace set the exam's existing questions are removed first, in the same transaction.
func (s *ImportService) ImportQuestions(ctx context.Context, examID uint, upload ImportUpload, replace bool) (*ImportSummary, error) {
	if _, err := s.ExamRepo.FindByID(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}

	rows, err := readSheet(upload.Data)
	if err != nil {
		return nil, err
	}
	columns := resolveColumns(rows[0], questionColumns)
	if _, ok := columns[fieldQuestionText]; !ok {
		return nil, util.NewValidationError("no question column found in header row")
	}
	if _, ok := columns[fieldCorrect]; !ok {
		return nil, util.NewValidationError("no correct answer column found in header row")
	}

	summary := &ImportSummary{Errors: []RowError{}}
	var questions []*model.Question
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		q, err := parseQuestionRow(row, columns)
		if err != nil {
			summary.Errors = append(summary.Errors, RowError{Row: i + 2, Message: err.Error()})
			continue
		}
		questions = append(questions, q)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exams := s.ExamRepo.WithTx(tx)
		if replace {
			if err := exams.DeleteQuestions(ctx, examID); err != nil {
				return err
			}
		}
		order, err := exams.NextQuestionOrder(ctx, examID)
		if err != nil {
			return err
		}
		for _, q := range questions {
			q.ExamTemplateID = examID
			q.SortOrder = order
			order++
			if err := exams.CreateQuestion(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.Success = len(questions)
	summary.Rejected = len(summary.Errors)
	s.finish(ctx, model.ImportKindQuestions, &examID, nil, upload, summary)
	logger.Log.Info("Questions imported",
		zap.Uint("exam_id", examID),
		zap.Int("success", summary.Success),
		zap.Int("rejected", summary.Rejected),
		zap.Bool("replace", replace),
	)
	return summary, nil
}

// ImportStudents creates one student per row, each in its own transaction. Failed rows are
// reported and the batch continues.
func (s *ImportService) ImportStudents(ctx context.Context, sectionID *uint, upload ImportUpload) (*ImportSummary, error) {
	if err := s.Students.ensureSection(ctx, sectionID); err != nil {
		return nil, err
	}

	rows, err := readSheet(upload.Data)
	if err != nil {
		return nil, err
	}
	columns := resolveColumns(rows[0], studentColumns)
	if _, ok := columns[fieldNationalID]; !ok {
		return nil, util.NewValidationError("no national id column found in header row")
	}

	summary := &ImportSummary{Errors: []RowError{}}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		line := i + 2
		nationalID := cell(row, columns, fieldNationalID)
		fullName := cell(row, columns, fieldFullName)
		if nationalID == "" || fullName == "" {
			summary.Errors = append(summary.Errors, RowError{Row: line, Message: "national id and full name are required"})
			continue
		}

		number := cell(row, columns, fieldStudentNumber)
		if number == "" {
			number = nationalID
		}
		in := StudentInput{
			FullName:      fullName,
			NationalID:    nationalID,
			StudentNumber: &number,
			SectionID:     sectionID,
			Password:      number,
		}
		if _, err := s.Students.Create(ctx, in); err != nil {
			summary.Errors = append(summary.Errors, RowError{Row: line, Message: rowErrorMessage(err)})
			continue
		}
		summary.Success++
	}

	summary.Rejected = len(summary.Errors)
	s.finish(ctx, model.ImportKindStudents, nil, sectionID, upload, summary)
	logger.Log.Info("Students imported",
		zap.Int("success", summary.Success),
		zap.Int("rejected", summary.Rejected),
	)
	return summary, nil
}

func rowErrorMessage(err error) string {
	var appErr *util.AppError
	if errors.As(err, &appErr) && appErr.Kind != util.KindInternal {
		return appErr.Message
	}
	return "could not save row"
}

// finish archives the upload, records an import log and counts the rows. Failures here are
// logged only; the rows are already committed.
func (s *ImportService) finish(ctx context.Context, kind string, examID, sectionID *uint, upload ImportUpload, summary *ImportSummary) {
	monitoring.ImportRows.WithLabelValues(kind, "imported").Add(float64(summary.Success))
	monitoring.ImportRows.WithLabelValues(kind, "rejected").Add(float64(summary.Rejected))

	if s.Storage != nil {
		url, err := s.Storage.ArchiveImport(ctx, kind, upload.FileName, upload.Data)
		if err != nil {
			logger.Log.Warn("Failed to archive import file", zap.String("kind", kind), zap.Error(err))
		} else {
			summary.FileURL = url
		}
	}

	errs, err := json.Marshal(summary.Errors)
	if err != nil {
		errs = []byte("[]")
	}
	entry := &model.ImportLog{
		Kind:           kind,
		ExamTemplateID: examID,
		SectionID:      sectionID,
		UploadedBy:     upload.UploadedBy,
		FileName:       strings.TrimSpace(upload.FileName),
		FileURL:        summary.FileURL,
		TotalRows:      summary.Success + summary.Rejected,
		SuccessCount:   summary.Success,
		Errors:         datatypes.JSON(errs),
	}
	if err := s.LogRepo.Create(ctx, entry); err != nil {
		logger.Log.Warn("Failed to record import log", zap.String("kind", kind), zap.Error(err))
		return
	}
	summary.LogID = entry.ID
}

func (s *ImportService) ImportLogs(ctx context.Context, examID uint) ([]model.ImportLog, error) {
	return s.LogRepo.FindByExam(ctx, examID)
}
