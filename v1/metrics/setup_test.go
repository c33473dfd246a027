package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "vectordb-api"})

	m.IncrementRequests("/{table}/search", "POST", "200")
	m.IncrementRequests("/{table}/search", "POST", "200")
	m.IncrementRequests("/{table}/search", "POST", "400")
	m.RecordRequestDuration(time.Now(), "/{table}/search", "POST")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/{table}/search", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/{table}/search", "POST", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestRecordOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "vectordb-api"})

	m.RecordOperation("sqlite", "search", 5*time.Millisecond, nil)
	m.RecordOperation("sqlite", "search", 5*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("sqlite", "search", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("sqlite", "search", StatusError)))
}

func TestHandlerExposesServiceLabel(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "vectordb-api", Namespace: "vdb"})
	m.IncrementRequests("/healthz", "GET", "200")

	counter := m.CreateCounter("custom_total", "custom counter", []string{"kind"})
	counter.WithLabelValues("x").Inc()

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `vdb_http_requests_total{method="GET",route="/healthz",service="vectordb-api",status="200"} 1`)
	assert.Contains(t, string(body), `vdb_custom_total{kind="x",service="vectordb-api"} 1`)
}

func TestDefaultAddress(t *testing.T) {
	m := NewMetrics(Config{})
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)

	var _ MetricsCollector = m
}
