package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	ollama "github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", false)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Info().Str("intent", "directions").Msg("turn complete")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "turn complete", line["message"])
	assert.Equal(t, "directions", line["intent"])
	assert.Equal(t, "waypoint", line["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestRecordTurnAndTool(t *testing.T) {
	before := testutil.ToFloat64(turnsTotal.WithLabelValues("directions", OutcomeClarification))
	RecordTurn("directions", OutcomeClarification, 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(turnsTotal.WithLabelValues("directions", OutcomeClarification)))

	before = testutil.ToFloat64(toolInvocations.WithLabelValues("web_search", "ok"))
	RecordToolInvocation("web_search", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(toolInvocations.WithLabelValues("web_search", "ok")))
}

type fakeOllama struct {
	heartbeatErr error
	running      *ollama.ProcessResponse
	listErr      error
}

func (f *fakeOllama) Heartbeat(ctx context.Context) error { return f.heartbeatErr }

func (f *fakeOllama) ListRunning(ctx context.Context) (*ollama.ProcessResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.running, nil
}

func TestDiagnoseHealthy(t *testing.T) {
	probe := &fakeOllama{running: &ollama.ProcessResponse{Models: []ollama.ProcessModelResponse{
		{Name: "gpt-oss:20b", Model: "gpt-oss:20b", Size: 13 << 30, SizeVRAM: 12 << 30},
	}}}

	report := Diagnose(context.Background(), Probes{
		Ollama:      probe,
		Model:       "gpt-oss:20b",
		Credentials: map[string]bool{"TAVILY_API_KEY": true, "GOOGLE_MAPS_API_KEY": true},
	})

	require.Len(t, report.Checks, 4)
	assert.True(t, report.Healthy())
	assert.Equal(t, "ollama", report.Checks[0].Name)
	assert.Contains(t, report.Checks[1].Detail, "gpt-oss:20b loaded (size 13.0 GiB")
	// credentials are reported in name order
	assert.Equal(t, "GOOGLE_MAPS_API_KEY", report.Checks[2].Name)
	assert.Equal(t, "TAVILY_API_KEY", report.Checks[3].Name)
}

func TestDiagnoseReportsFailures(t *testing.T) {
	probe := &fakeOllama{heartbeatErr: errors.New("connection refused"), listErr: errors.New("connection refused")}

	report := Diagnose(context.Background(), Probes{
		Ollama:      probe,
		Credentials: map[string]bool{"GOOGLE_MAPS_API_KEY": false},
	})

	assert.False(t, report.Healthy())
	for _, c := range report.Checks {
		assert.False(t, c.OK, c.Name)
	}
	assert.Equal(t, "missing", report.Checks[2].Detail)
}

func TestDiagnoseWithoutOllama(t *testing.T) {
	report := Diagnose(context.Background(), Probes{Credentials: map[string]bool{"TAVILY_API_KEY": true}})
	require.Len(t, report.Checks, 1)
	assert.True(t, report.Healthy())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2<<20))
}
