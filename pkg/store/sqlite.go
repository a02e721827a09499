package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS report_definitions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL DEFAULT '',
        report_name TEXT NOT NULL UNIQUE,
        content TEXT NOT NULL DEFAULT '',
        output_type TEXT
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

func (s *SQLiteStore) Lookup(ctx context.Context, serviceName string) (*Definition, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, report_name, content, output_type FROM report_definitions WHERE report_name = ?",
		serviceName)
	return scanDefinition(row, serviceName)
}

func (s *SQLiteStore) SetOutputType(ctx context.Context, id int64, outputType report.OutputFormat) error {
	res, err := s.db.ExecContext(ctx, "UPDATE report_definitions SET output_type = ? WHERE id = ?", string(outputType), id)
	if err != nil {
		return fmt.Errorf("failed to set output type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return report.NotFoundError(fmt.Sprintf("no report definition with id %d", id))
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, d *Definition) (int64, error) {
	query := `
        INSERT INTO report_definitions (name, report_name, content, output_type)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (report_name) DO UPDATE SET
            name = excluded.name,
            content = excluded.content,
            output_type = excluded.output_type
    `
	if _, err := s.db.ExecContext(ctx, query, d.Name, d.ReportName, encodeContent(d.Content), string(d.OutputType)); err != nil {
		return 0, fmt.Errorf("failed to save report definition: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, "SELECT id FROM report_definitions WHERE report_name = ?", d.ReportName).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read report definition id: %w", err)
	}
	d.ID = id
	return id, nil
}
