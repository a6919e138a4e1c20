package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/dwml-forecast/internal/adapter/http"
	"github.com/couchcryptid/dwml-forecast/internal/domain"
	"github.com/couchcryptid/dwml-forecast/internal/observability"
	"github.com/couchcryptid/dwml-forecast/internal/pipeline"
	"github.com/couchcryptid/dwml-forecast/internal/report"
	"github.com/couchcryptid/dwml-forecast/internal/testdata"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingGenerator struct {
	err error
}

func (g failingGenerator) Generate(context.Context, pipeline.Request) (pipeline.Result, error) {
	return pipeline.Result{}, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newReporter() *pipeline.Reporter {
	clock := clockwork.NewFakeClockAt(testdata.ForecastBaseTime.Add(5 * time.Minute))
	return pipeline.NewReporter(pipeline.ReporterConfig{
		WindowHours: domain.DefaultWindowHours,
		Location:    time.FixedZone("EDT", -4*3600),
		Legend:      report.LegendNone,
	}, clock, discardLogger(), observability.NewMetricsForTesting())
}

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, newReporter(), discardLogger())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReportsRendersText(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(testdata.Forecast(t)))

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2015-08-21T12:00:00Z", rec.Header().Get("X-Base-Time"))
	assert.Contains(t, rec.Body.String(), "2015-08-21 08   22  23      31")
}

func TestReportsHonoursQueryParameters(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reports?format=html&legend=bottom", bytes.NewReader(testdata.Forecast(t)))

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<table border=\"0\">"))
	assert.Contains(t, rec.Body.String(), "Legend")
}

func TestReportsRejectsInvalidParameters(t *testing.T) {
	srv := newTestServer(nil)
	for _, target := range []string{"/reports?format=pdf", "/reports?legend=left"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(testdata.Forecast(t)))

		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "invalid_parameter", decodeBody(t, rec)["kind"])
	}
}

func TestReportsRejectsStructuralErrors(t *testing.T) {
	cases := map[string]string{
		"malformed_document":   "<dwml><data>",
		"unknown_layout":       `<dwml><data><parameters><humidity time-layout="k-p1h-n1-1"><value>1</value></humidity></parameters></data></dwml>`,
		"malformed_layout_key": `<dwml><data><time-layout><layout-key>hourly</layout-key></time-layout></data></dwml>`,
	}
	srv := newTestServer(nil)
	for kind, doc := range cases {
		t.Run(kind, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(doc))

			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestReportsRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	body := bytes.Repeat([]byte(" "), httpadapter.MaxDocumentBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(body))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "document_too_large", decodeBody(t, rec)["kind"])
}

func TestReportsInternalError(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, failingGenerator{err: fmt.Errorf("disk full")}, discardLogger())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader("<dwml/>"))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeBody(t, rec)["kind"])
}

func TestReportsRequiresPost(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
