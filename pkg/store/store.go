// Package store persists report definitions: the packaged report file and
// the output type last chosen for it.
package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// Definition is a stored report definition. Content is the decoded report
// file; it is kept base64 encoded at rest.
type Definition struct {
	ID         int64
	Name       string
	ReportName string
	Content    []byte
	OutputType report.OutputFormat
}

// DefinitionStore looks up and updates report definitions.
type DefinitionStore interface {
	// Lookup finds the definition registered under a report service name.
	Lookup(ctx context.Context, serviceName string) (*Definition, error)
	// SetOutputType records the output type chosen for a definition.
	SetOutputType(ctx context.Context, id int64, outputType report.OutputFormat) error
	// Save inserts or replaces a definition keyed by ReportName and returns its id.
	Save(ctx context.Context, d *Definition) (int64, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner, serviceName string) (*Definition, error) {
	var (
		d       Definition
		encoded string
		output  sql.NullString
	)
	err := row.Scan(&d.ID, &d.Name, &d.ReportName, &encoded, &output)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, report.NotFoundError(fmt.Sprintf("no report registered for service %q", serviceName))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup report %q: %w", serviceName, err)
	}
	d.Content, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("report %q has corrupt content: %w", serviceName, err)
	}
	d.OutputType = report.OutputFormat(output.String)
	return &d, nil
}

func encodeContent(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
