package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"

	_ "github.com/lib/pq"
)

// PostgresStore implements DefinitionStore using PostgreSQL. The schema is
// managed outside the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Lookup(ctx context.Context, serviceName string) (*Definition, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, report_name, content, output_type FROM report_definitions WHERE report_name = $1",
		serviceName)
	return scanDefinition(row, serviceName)
}

func (s *PostgresStore) SetOutputType(ctx context.Context, id int64, outputType report.OutputFormat) error {
	res, err := s.db.ExecContext(ctx, "UPDATE report_definitions SET output_type = $1 WHERE id = $2", string(outputType), id)
	if err != nil {
		return fmt.Errorf("failed to set output type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return report.NotFoundError(fmt.Sprintf("no report definition with id %d", id))
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, d *Definition) (int64, error) {
	query := `
		INSERT INTO report_definitions (name, report_name, content, output_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (report_name) DO UPDATE SET
			name = EXCLUDED.name,
			content = EXCLUDED.content,
			output_type = EXCLUDED.output_type
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query, d.Name, d.ReportName, encodeContent(d.Content), string(d.OutputType)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save report definition: %w", err)
	}
	d.ID = id
	return id, nil
}
