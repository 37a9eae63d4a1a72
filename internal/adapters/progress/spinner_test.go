package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

func TestSpinnerSink(t *testing.T) {
	var buf bytes.Buffer
	sink := newSpinnerSink(&buf)

	sink.OnProgress(context.Background(), usecase.ProgressEvent{Stage: "completed", Message: "Proposal executed"})
	sink.Info("clock warped")
	sink.Error("call reverted")
	sink.Stop()

	out := buf.String()
	assert.Contains(t, out, "Proposal executed")
	assert.Contains(t, out, "clock warped")
	assert.Contains(t, out, "call reverted")
	assert.Equal(t, "completed", sink.stage)
}
