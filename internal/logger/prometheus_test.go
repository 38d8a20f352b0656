package logger

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusHook(t *testing.T) {
	h := NewPrometheusHook("test")
	before := testutil.ToFloat64(statements.WithLabelValues("warn"))

	h.Run(nil, zerolog.WarnLevel, "")
	h.Run(nil, zerolog.NoLevel, "")

	assert.InDelta(t, before+1, testutil.ToFloat64(statements.WithLabelValues("warn")), 0)
	assert.Equal(t, h, NewPrometheusHook("other"))
}
