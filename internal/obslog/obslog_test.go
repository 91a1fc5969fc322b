package obslog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_WritesLeveledJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Info("hello", "count", 3)
	out := buf.String()

	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"count":3`)
}

func TestNew_RespectsLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info("should be suppressed")
	assert.Empty(t, buf.String())

	log.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "not-a-level")

	log.Info("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestBlock_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").Block("blk-1", "scale")

	log.Info("tick")
	out := buf.String()
	assert.Contains(t, out, `"block_id":"blk-1"`)
	assert.Contains(t, out, `"kind":"scale"`)
}

func TestError_IncludesErrField(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Error(errors.New("boom"), "failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestNop_DiscardsEverything(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() { log.Info("noop") })
}
