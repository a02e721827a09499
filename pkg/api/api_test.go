package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/api"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/formula"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/metadata"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/printer"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/session"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/store"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/wizard"
)

func newServer(t *testing.T, source metadata.Source, limiter *api.RateLimiter) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	defs, err := store.NewSQLiteStore(db)
	require.NoError(t, err)
	_, err = defs.Save(context.Background(), &store.Definition{
		Name:       "Sales",
		ReportName: "report.sales",
		Content:    []byte("<prpt/>"),
	})
	require.NoError(t, err)

	reg, err := formula.NewRegistry(formula.WithClock(func() time.Time {
		return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	mgr := session.NewManager(report.NewParser(report.DefaultMaxParams, reg), time.Hour, nil)
	wiz := wizard.New(mgr, defs, source)
	return api.NewServer(wiz, mgr, limiter).Handler()
}

func salesSource() *metadata.StaticSource {
	return &metadata.StaticSource{Records: []report.RawParamRecord{
		{Name: "cust", ValueType: "java.lang.String", Attributes: map[string]string{report.AttrLabel: "Customer"}},
		{Name: "asOf", ValueType: "java.util.Date", Attributes: map[string]string{report.AttrFormula: formula.Now}},
	}}
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, hdr http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range hdr {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var out map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.NotEmpty(t, out["session_id"])
	return out["session_id"]
}

func TestHealth(t *testing.T) {
	h := newServer(t, salesSource(), nil)
	w := do(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestDefaultsAndView(t *testing.T) {
	h := newServer(t, salesSource(), nil)
	id := createSession(t, h)
	base := "/v1/sessions/" + id + "/reports/report.sales"

	w := do(t, h, http.MethodGet, base+"/defaults", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var defaults map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&defaults))
	assert.Equal(t, "Sales", defaults["report_name"])
	assert.Equal(t, "2024-03-09", defaults["param_001_date_value"])

	w = do(t, h, http.MethodGet, base+"/view", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var view map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	slots := view["schema"].(map[string]any)["slots"].([]any)
	assert.Len(t, slots, 2)

	w = do(t, h, http.MethodGet, base+"/view", nil, http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestPrint(t *testing.T) {
	h := newServer(t, salesSource(), nil)
	id := createSession(t, h)
	path := "/v1/sessions/" + id + "/reports/report.sales/print"

	w := do(t, h, http.MethodPost, path,
		[]byte(`{"output_type":"pdf","values":{"0":"Acme","1":"2024-01-01"},"active_ids":[5],"active_model":"res.partner"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var action printer.Action
	require.NoError(t, json.NewDecoder(w.Body).Decode(&action))
	assert.Equal(t, printer.ActionType, action.Type)
	assert.Equal(t, report.FormatPDF, action.Datas.OutputFormat)
	assert.Equal(t, "Acme", action.Datas.Variables["cust"])
	assert.Equal(t, "2024-01-01", action.Datas.Variables["asOf"])
	assert.Equal(t, []int64{5}, action.Datas.TargetRecordIDs)
	assert.Equal(t, "res.partner", action.Datas.TargetModel)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		source metadata.Source
		method string
		suffix string
		body   string
		status int
		code   string
	}{
		{"invalid submission", salesSource(), http.MethodPost, "/reports/report.sales/print", `{"output_type":"pdf","values":{"1":"March"}}`, http.StatusUnprocessableEntity, "INVALID_SUBMISSION"},
		{"unknown output type", salesSource(), http.MethodPost, "/reports/report.sales/print", `{"output_type":"docx"}`, http.StatusUnprocessableEntity, "INVALID_SUBMISSION"},
		{"malformed body", salesSource(), http.MethodPost, "/reports/report.sales/print", `{`, http.StatusBadRequest, ""},
		{"unknown report", salesSource(), http.MethodGet, "/reports/report.none/view", "", http.StatusNotFound, "REPORT_NOT_FOUND"},
		{"remote failure", &metadata.StaticSource{Err: report.RemoteError("down", nil)}, http.MethodGet, "/reports/report.sales/view", "", http.StatusBadGateway, "REMOTE_SERVICE_ERROR"},
		{"unknown type", &metadata.StaticSource{Records: []report.RawParamRecord{
			{Name: "blob", ValueType: "java.sql.Blob", Attributes: map[string]string{}},
		}}, http.MethodGet, "/reports/report.sales/defaults", "", http.StatusUnprocessableEntity, "UNKNOWN_PARAMETER_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newServer(t, tt.source, nil)
			id := createSession(t, h)

			w := do(t, h, tt.method, "/v1/sessions/"+id+tt.suffix, []byte(tt.body), nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var p api.ProblemDetail
			require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.code, p.Code)
		})
	}
}

func TestRemoteFailureDetailHidden(t *testing.T) {
	h := newServer(t, &metadata.StaticSource{Err: report.RemoteError("dial tcp 10.0.0.7:8090: refused", nil)}, nil)
	id := createSession(t, h)

	w := do(t, h, http.MethodGet, "/v1/sessions/"+id+"/reports/report.sales/view", nil, nil)
	assert.NotContains(t, w.Body.String(), "10.0.0.7")
}

func TestWriteReportError_Internal(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	api.WriteReportError(w, r, errors.New("pq: connection refused to host=10.0.0.1"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusFor(report.CodeTooManyParameters))
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusFor(report.CodeMissingAttributes))
	assert.Equal(t, http.StatusNotFound, api.StatusFor(report.CodeReportNotFound))
	assert.Equal(t, http.StatusBadGateway, api.StatusFor(report.CodeRemoteService))
	assert.Equal(t, http.StatusInternalServerError, api.StatusFor("SOMETHING_ELSE"))
}
