package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitpool/internal/models"
)

func TestRegistry_LedgerCounters(t *testing.T) {
	r := NewRegistry()

	r.ExpenseCreated(models.SplitEqual)
	r.ExpenseCreated(models.SplitEqual)
	r.SplitRejected(models.SplitAmount)
	r.PoolSettled()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.ExpensesCreated.WithLabelValues("equal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SplitRejections.WithLabelValues("amount")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PoolsSettled))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "ok", codeOf(nil))
	assert.Equal(t, "not_found", codeOf(connect.NewError(connect.CodeNotFound, errors.New("missing"))))
	assert.Equal(t, "unknown", codeOf(errors.New("plain")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	r := NewRegistry()
	r.PoolSettled()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "splitpool_pools_settled_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
