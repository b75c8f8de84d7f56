package logging

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2084, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		desc    string
		logsDir string
		want    string
	}{
		{
			desc:    "basic path",
			logsDir: "airfightlogs",
			want:    filepath.Join("airfightlogs", "airfight.20840212_213836.log"),
		},
		{
			desc:    "relative path with dot",
			logsDir: "./airfightlogs",
			want:    filepath.Join(".", "airfightlogs", "airfight.20840212_213836.log"),
		},
		{
			desc:    "absolute path",
			logsDir: filepath.Join("/var", "log", "airfight"),
			want:    filepath.Join("/var", "log", "airfight", "airfight.20840212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, ServiceName, sessionStart))
		})
	}
}

func TestCampaignProvider(t *testing.T) {
	name, clock := "", int64(0)
	p := CampaignProvider(func() (string, int64) { return name, clock })

	assert.Empty(t, p())

	name, clock = "thunder", 7200
	attrs := p()
	if assert.Len(t, attrs, 2) {
		assert.Equal(t, "thunder", attrs[0].Value.String())
		assert.Equal(t, int64(7200), attrs[1].Value.Int64())
	}
}

func TestSetContext_TagsRecords(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.SetContext(CampaignProvider(func() (string, int64) { return "thunder", 42 }))
	m.Setup(&buf, "INFO", nil)

	m.Logger().Info("fired")
	assert.Contains(t, buf.String(), "campaign=thunder")
	assert.Contains(t, buf.String(), "clock=42")
}

func TestSetContext_ReadsClockPerRecord(t *testing.T) {
	var buf bytes.Buffer
	clock := int64(3600)
	m := NewSlogManager()
	m.SetContext(CampaignProvider(func() (string, int64) { return "thunder", clock }))
	m.Setup(&buf, "info", nil)
	buf.Reset()

	logger := m.Logger().With("component", "worker").WithGroup("drain")
	clock = 3605
	logger.Info("flushed", "events", 2)

	out := buf.String()
	assert.Contains(t, out, "component=worker")
	assert.Contains(t, out, "drain.events=2")
	assert.Contains(t, out, "clock=3605")
	assert.NotContains(t, out, "clock=3600")
}

func TestSetContext_NoCampaignAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.SetContext(CampaignProvider(func() (string, int64) { return "", 0 }))
	m.Setup(&buf, "info", nil)

	m.Logger().Info("starting")
	assert.NotContains(t, buf.String(), "campaign=")
}
