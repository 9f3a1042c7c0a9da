package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_IsolatedRegistries(t *testing.T) {
	// Two collectors with the same namespace must not collide when given separate registries.
	a := NewCollectorWithRegistry("test", prometheus.NewRegistry())
	b := NewCollectorWithRegistry("test", prometheus.NewRegistry())

	a.RecordAPIRequest("/api/efektivitas", "GET", "200")
	a.RecordAPIRequest("/api/efektivitas", "GET", "200")
	b.RecordAPIRequest("/api/efektivitas", "GET", "200")

	assert.Equal(t, 2.0, testutil.ToFloat64(a.APIRequestsTotal.WithLabelValues("/api/efektivitas", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.APIRequestsTotal.WithLabelValues("/api/efektivitas", "GET", "200")))
}

func TestCollector_ImportStatus(t *testing.T) {
	c := NewCollectorWithRegistry("test", prometheus.NewRegistry())

	c.RecordImportStatus("VALID", 3)
	c.RecordImportStatus("INVALID", 0)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.ImportRecordsTotal.WithLabelValues("VALID")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ImportRecordsTotal.WithLabelValues("INVALID")))
}

func TestCollector_ConnectionPool(t *testing.T) {
	c := NewCollectorWithRegistry("test", prometheus.NewRegistry())
	c.UpdateDBConnectionPool(2, 3, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("in_use")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("total")))
}
