package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/attribution-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:     "abc12345-6789-0000-0000-000000000000",
			Status: model.RunStatusComplete,
			Report: &model.AttributionReport{
				TotalClients:      40,
				AttributedClients: 30,
				AttributionRate:   "75.0%",
			},
			CreatedAt: now,
			UpdatedAt: now.Add(90 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Status:    model.RunStatusFailed,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-59 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "75.0%")
	assert.Contains(t, output, "40")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "2025-07-01 10:30")
}

func TestFormatRunsList_NoReport(t *testing.T) {
	runs := []model.Run{
		{ID: "xyz", Status: model.RunStatusRunning, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	assert.Contains(t, buf.String(), "running")
	assert.Contains(t, buf.String(), "-")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000"))
	assert.Equal(t, "short", truncateID("short"))
}
