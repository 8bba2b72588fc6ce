package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	m := New("pose_test")

	m.ObserveStage(StageDecode, 2*time.Millisecond)
	m.ObserveSkeleton(12, 17, 9)
	m.ObserveSkeleton(17, 17, 16)
	m.ObserveError(StageInference)
	m.ObserveError(StageInference)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.predictions))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.detectedRatio))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.errors.WithLabelValues(string(StageInference))))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageSeconds))
}

func TestMetricsHandler(t *testing.T) {
	m := New("pose_test")
	m.ObserveSkeleton(3, 17, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pose_test_skeletons_total 1"))
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.ObserveStage(StagePreprocess, time.Second)
	r.ObserveSkeleton(0, 0, 0)
	r.ObserveError(StageDecode)
}
