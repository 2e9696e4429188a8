package database

import (
	"sems_backend/internal/config"
	"testing"
)

func TestInitDBSQLiteMigrates(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	for _, table := range []string{"users", "students", "exam_templates", "questions", "answers", "results", "question_reports", "import_logs"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s was not created", table)
		}
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	if _, err := dialector(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestInitRedisDisabled(t *testing.T) {
	rdb, err := InitRedis(&config.RedisConfig{Enabled: false})
	if err != nil || rdb != nil {
		t.Fatalf("InitRedis disabled = (%v, %v), want (nil, nil)", rdb, err)
	}
}
