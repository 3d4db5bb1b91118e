package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordReload("ok", 1.5)
	r.RecordReload("error", 0.2)
	r.RecordReload("ok", 2)
	r.RecordSnapshotSize("codes", 54)
	r.RecordError("compute")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.reloads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reloads.WithLabelValues("error")))
	assert.Equal(t, 54.0, testutil.ToFloat64(r.snapshotSize.WithLabelValues("codes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("compute")))
}
