// Package api exposes the report prompt over HTTP/JSON with RFC 7807 error
// responses.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// ProblemDetail implements RFC 7807 (Problem Details for HTTP APIs).
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Code is the report error code, when the failure has one.
	Code      string `json:"code,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

func (p *ProblemDetail) Error() string {
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

func problemType(status int) string {
	return fmt.Sprintf("https://reportprompt.local/errors/%d", status)
}

func writeProblem(w http.ResponseWriter, p *ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteError writes an RFC 7807 Problem Detail JSON response.
func WriteError(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, &ProblemDetail{
		Type:   problemType(status),
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// WriteBadRequest writes a 400 error response.
func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusBadRequest, "Bad Request", detail)
}

// WriteTooManyRequests writes a 429 error response with Retry-After header.
func WriteTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSecs))
	WriteError(w, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded. Retry after the specified interval.")
}

// WriteInternal writes a 500 error response. err is logged, never returned
// to the client.
func WriteInternal(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred. Please try again later.")
}

// StatusFor maps a report error code to an HTTP status.
func StatusFor(code report.Code) int {
	switch code {
	case report.CodeUnknownParameterType,
		report.CodeMissingParameterName,
		report.CodeMissingAttributes,
		report.CodeTooManyParameters,
		report.CodeConversion,
		report.CodeInvalidSubmission:
		return http.StatusUnprocessableEntity
	case report.CodeReportNotFound:
		return http.StatusNotFound
	case report.CodeRemoteService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteReportError writes err as a Problem Detail. Errors without a report
// code are treated as internal.
func WriteReportError(w http.ResponseWriter, r *http.Request, err error) {
	code := report.CodeOf(err)
	if code == "" {
		WriteInternal(w, err)
		return
	}
	status := StatusFor(code)
	p := &ProblemDetail{
		Type:     problemType(status),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   err.Error(),
		Instance: r.URL.Path,
		Code:     string(code),
	}
	var e *report.Error
	if errors.As(err, &e) {
		p.Parameter = e.Parameter
	}
	if code == report.CodeRemoteService {
		slog.Warn("reporting server failure", "path", r.URL.Path, "error", err)
		p.Detail = "The reporting server could not describe the report parameters."
	}
	writeProblem(w, p)
}
