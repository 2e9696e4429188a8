package repository

import (
	"context"
	"database/sql"
	"sems_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExamFilter struct {
	SubjectID  *uint
	ActiveOnly bool
}

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) WithTx(tx *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: tx}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("questions.sort_order ASC, questions.id ASC")
}

func orderedAnswers(db *gorm.DB) *gorm.DB {
	return db.Order("answers.sort_order ASC, answers.id ASC")
}

func (r *ExamRepository) List(ctx context.Context, f ExamFilter) ([]model.ExamTemplate, error) {
	q := r.DB.WithContext(ctx).Preload("Subject")
	if f.SubjectID != nil {
		q = q.Where("subject_id = ?", *f.SubjectID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var exams []model.ExamTemplate
	err := q.Order("id DESC").Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) FindByID(ctx context.Context, id uint) (*model.ExamTemplate, error) {
	var exam model.ExamTemplate
	err := r.DB.WithContext(ctx).Preload("Subject").First(&exam, id).Error
	return &exam, err
}

// FindWithQuestions loads the template with its ordered questions and answer choices.
func (r *ExamRepository) FindWithQuestions(ctx context.Context, id uint) (*model.ExamTemplate, error) {
	var exam model.ExamTemplate
	err := r.DB.WithContext(ctx).
		Preload("Subject").
		Preload("Questions", orderedQuestions).
		Preload("Questions.Answers", orderedAnswers).
		First(&exam, id).Error
	return &exam, err
}

// LockByID reads the template row with FOR UPDATE. Only meaningful inside a transaction;
// SQLite ignores the locking clause and serializes writers itself.
func (r *ExamRepository) LockByID(ctx context.Context, id uint) (*model.ExamTemplate, error) {
	var exam model.ExamTemplate
	q := r.DB.WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&exam, id).Error
	return &exam, err
}

func (r *ExamRepository) Create(ctx context.Context, exam *model.ExamTemplate) error {
	return r.DB.WithContext(ctx).Omit("Subject", "Questions").Create(exam).Error
}

func (r *ExamRepository) Update(ctx context.Context, exam *model.ExamTemplate) error {
	return r.DB.WithContext(ctx).Omit("Subject", "Questions").Save(exam).Error
}

// Delete removes the template with its questions, answers, results and question reports.
func (r *ExamRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := r.WithTx(tx)
		if err := repo.deleteQuestions(id); err != nil {
			return err
		}
		if err := tx.Where("exam_template_id = ?", id).Delete(&model.Result{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ExamTemplate{}, id).Error
	})
}

// DeleteQuestions clears every question of the template. Callers run it inside a transaction.
func (r *ExamRepository) DeleteQuestions(ctx context.Context, examID uint) error {
	return r.WithTx(r.DB.WithContext(ctx)).deleteQuestions(examID)
}

func (r *ExamRepository) deleteQuestions(examID uint) error {
	sub := r.DB.Model(&model.Question{}).Select("id").Where("exam_template_id = ?", examID)
	if err := r.DB.Where("question_id IN (?)", sub).Delete(&model.AnswerChoice{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("exam_template_id = ?", examID).Delete(&model.QuestionReport{}).Error; err != nil {
		return err
	}
	return r.DB.Where("exam_template_id = ?", examID).Delete(&model.Question{}).Error
}

func (r *ExamRepository) ListQuestions(ctx context.Context, examID uint) ([]model.Question, error) {
	var questions []model.Question
	err := orderedQuestions(r.DB.WithContext(ctx)).
		Preload("Answers", orderedAnswers).
		Where("exam_template_id = ?", examID).
		Find(&questions).Error
	return questions, err
}

func (r *ExamRepository) FindQuestion(ctx context.Context, examID, questionID uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.WithContext(ctx).
		Preload("Answers", orderedAnswers).
		Where("id = ? AND exam_template_id = ?", questionID, examID).
		First(&question).Error
	return &question, err
}

func (r *ExamRepository) NextQuestionOrder(ctx context.Context, examID uint) (int, error) {
	var max sql.NullInt64
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Where("exam_template_id = ?", examID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil || !max.Valid {
		return 0, err
	}
	return int(max.Int64) + 1, nil
}

// CreateQuestion inserts the question together with its answer choices.
func (r *ExamRepository) CreateQuestion(ctx context.Context, question *model.Question) error {
	return r.DB.WithContext(ctx).Create(question).Error
}

// ReplaceQuestion updates the question text and order and swaps its answer set.
func (r *ExamRepository) ReplaceQuestion(ctx context.Context, question *model.Question) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Question{}).Where("id = ?", question.ID).Updates(map[string]interface{}{
			"question_text": question.QuestionText,
			"sort_order":    question.SortOrder,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&model.AnswerChoice{}).Error; err != nil {
			return err
		}
		for i := range question.Answers {
			question.Answers[i].ID = 0
			question.Answers[i].QuestionID = question.ID
		}
		if len(question.Answers) == 0 {
			return nil
		}
		return tx.Create(&question.Answers).Error
	})
}

func (r *ExamRepository) DeleteQuestion(ctx context.Context, questionID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.AnswerChoice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", questionID).Delete(&model.QuestionReport{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, questionID).Error
	})
}
