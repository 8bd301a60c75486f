package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	log := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)).With("action", "save_list")

	log.Info("list saved")
	log.Error("save failed")

	assert.Equal(t, 2, bytes.Count(info.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errs.Bytes(), []byte("\n")))
	assert.Contains(t, errs.String(), `"action":"save_list"`)
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	var out bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewJSONHandler(&out, nil))

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0))
	assert.Error(t, err)
	assert.Contains(t, out.String(), "hello")
}

func TestSystemLogMapsKnownKeys(t *testing.T) {
	record := slog.NewRecord(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), slog.LevelError, "save failed", 0)
	record.AddAttrs(
		slog.String("list_id", "l-1"),
		slog.String("action", "update_item"),
		slog.String("error", "boom"),
		slog.Int("count", 3),
	)
	entry := systemLog(record, []slog.Attr{slog.String("user_id", "u-1"), slog.String("request_id", "r-1")})

	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "save failed", entry.Message)
	assert.Equal(t, "r-1", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	require.NotNil(t, entry.ListID)
	assert.Equal(t, "l-1", *entry.ListID)
	assert.Equal(t, "update_item", entry.Action)
	assert.Equal(t, "boom", entry.Error)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, float64(3), extra["count"])
}

func TestPGHandlerOnlyTakesErrors(t *testing.T) {
	h := &PGHandler{}
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPGHandlerPersistsAndPurges(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))
	require.NoError(t, db.Exec("DELETE FROM system_logs").Error)

	h := NewPGHandler(db)
	slog.New(h).With("user_id", "u-9").Error("persist me", "action", "test")
	h.Stop()
	require.Eventually(t, func() bool {
		var n int64
		db.Model(&models.SystemLog{}).Where("message = ?", "persist me").Count(&n)
		return n == 1
	}, 5*time.Second, 50*time.Millisecond)

	purge(db, 30, time.Now().AddDate(0, 0, 31))
	var n int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&n).Error)
	assert.Zero(t, n)
}
