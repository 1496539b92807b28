package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProfilerRecordsPhases(t *testing.T) {
	p := NewProfiler(nil, false)

	stop := p.Begin("resolve")
	time.Sleep(2 * time.Millisecond)
	stop()
	p.Begin("compile")()

	phases := p.Phases()
	require.Len(t, phases, 2)
	assert.Equal(t, "resolve", phases[0].Name)
	assert.GreaterOrEqual(t, phases[0].Duration, 2*time.Millisecond)
	assert.Equal(t, "compile", phases[1].Name)
	assert.GreaterOrEqual(t, p.Elapsed(), phases[0].Duration)
}

func TestProfilerReport(t *testing.T) {
	t.Run("disabled logs the total only", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		p := NewProfiler(log.FromZap(zap.New(core)), false)
		p.Begin("compile")()
		p.Report("box.gltf")

		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "Processed glTF in")
	})

	t.Run("enabled adds phases and memory", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		p := NewProfiler(log.FromZap(zap.New(core)), true)
		p.Begin("resolve")()
		p.Begin("compile")()
		p.Report("box.gltf")

		assert.Equal(t, 1, logs.FilterMessageSnippet("Processed glTF in").Len())
		assert.Equal(t, 2, logs.FilterMessage("[Profiler] phase").Len())
		assert.Equal(t, 1, logs.FilterMessage("[Profiler] memory").Len())
	})
}
