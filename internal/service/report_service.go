package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sems_backend/internal/model"
	"sems_backend/internal/repository"
	"sems_backend/internal/util"
	"sems_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	reportCachePrefix = "sems:reports:"
	reportVersionKey  = reportCachePrefix + "version"
	reportExportSheet = "Reports"
	defaultReportTTL  = time.Minute
)

// ReportService serves read-only rollups over non-guest results. When a redis client is
// configured the aggregates are cached under a version key that every new result bumps.
type ReportService struct {
	Repo  *repository.ReportRepository
	Redis *redis.Client
	TTL   time.Duration
}

func NewReportService(repo *repository.ReportRepository, rdb *redis.Client, ttl time.Duration) *ReportService {
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	return &ReportService{Repo: repo, Redis: rdb, TTL: ttl}
}

func (s *ReportService) OverallStats(ctx context.Context, f model.ReportFilter) ([]model.SubjectStat, error) {
	key := fmt.Sprintf("overall:%s:%s", uintKey(f.SectionID), uintKey(f.SubjectID))
	stats := []model.SubjectStat{}
	if s.cached(ctx, key, &stats) {
		return stats, nil
	}

	rows, err := s.Repo.SubjectStats(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AvgPercentage = RoundPercentage(rows[i].AvgPercentage)
	}
	stats = append(stats, rows...)
	s.store(ctx, key, stats)
	return stats, nil
}

func (s *ReportService) SectionRanking(ctx context.Context) ([]model.SectionRank, error) {
	ranks := []model.SectionRank{}
	if s.cached(ctx, "sections", &ranks) {
		return ranks, nil
	}

	rows, err := s.Repo.SectionRanking(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AvgPercentage = RoundPercentage(rows[i].AvgPercentage)
	}
	ranks = append(ranks, rows...)
	s.store(ctx, "sections", ranks)
	return ranks, nil
}

// StudentReports returns flat rows newest first. Not cached.
func (s *ReportService) StudentReports(ctx context.Context, f model.ReportFilter) ([]model.StudentReportRow, error) {
	rows, err := s.Repo.StudentRows(ctx, f)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.StudentReportRow{}
	}
	return rows, nil
}

var exportHeaders = []string{
	"Student", "Student Number", "Section", "Subject", "Exam", "Score", "Total Questions", "Percentage", "Completed At",
}

// ExportExcel renders the student report rows as an xlsx workbook.
func (s *ReportService) ExportExcel(ctx context.Context, f model.ReportFilter) (*bytes.Buffer, error) {
	rows, err := s.StudentReports(ctx, f)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()
	if err := file.SetSheetName("Sheet1", reportExportSheet); err != nil {
		return nil, err
	}

	if err := file.SetSheetRow(reportExportSheet, "A1", &exportHeaders); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.FullName,
			derefString(r.StudentNumber),
			derefString(r.SectionName),
			r.SubjectName,
			r.ExamName,
			r.Score,
			r.TotalQuestions,
			r.Percentage,
			r.CompletedAt.Format(util.TimeFormat),
		}
		if err := file.SetSheetRow(reportExportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ExportPDF is not available; callers get a 501.
func (s *ReportService) ExportPDF(ctx context.Context, f model.ReportFilter) error {
	return util.ErrNotImplemented
}

// Invalidate drops every cached aggregate by bumping the version key.
func (s *ReportService) Invalidate(ctx context.Context) {
	if s == nil || s.Redis == nil {
		return
	}
	if err := s.Redis.Incr(ctx, reportVersionKey).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate report cache", zap.Error(err))
	}
}

func (s *ReportService) cacheKey(ctx context.Context, key string) (string, bool) {
	version, err := s.Redis.Get(ctx, reportVersionKey).Int64()
	if err != nil && err != redis.Nil {
		logger.Log.Warn("Report cache unavailable", zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("%sv%d:%s", reportCachePrefix, version, key), true
}

func (s *ReportService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.Redis == nil {
		return false
	}
	full, ok := s.cacheKey(ctx, key)
	if !ok {
		return false
	}
	data, err := s.Redis.Get(ctx, full).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("Report cache read failed", zap.String("key", full), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *ReportService) store(ctx context.Context, key string, value interface{}) {
	if s.Redis == nil {
		return
	}
	full, ok := s.cacheKey(ctx, key)
	if !ok {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, full, data, s.TTL).Err(); err != nil {
		logger.Log.Warn("Report cache write failed", zap.String("key", full), zap.Error(err))
	}
}

func uintKey(v *uint) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
