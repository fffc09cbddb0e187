package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const reportColumns = `id, sequence, link, source_type, source_id, track_count, matched_count, created_at, updated_at, deleted_at`

// ReportRepository implements models.Repository[*models.Report] for enrichment history.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository with the given database connection
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create assigns a fresh ID and sequence, then inserts the report with its rows in one transaction.
func (r *ReportRepository) Create(report *models.Report) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "reports")
	if err != nil {
		return err
	}

	report.SetID(shared.GenerateID())
	report.SetSequence(sequence)

	if err := report.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO reports (id, sequence, link, source_type, source_id, track_count, matched_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		report.ID(),
		report.Sequence(),
		report.Link(),
		string(report.SourceType()),
		report.SourceID(),
		report.TrackCount(),
		report.MatchedCount(),
		report.CreatedAt(),
		report.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	if err := insertRows(tx, report.ID(), report.Rows()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// Get retrieves a report and its rows by ID, excluding soft-deleted reports
func (r *ReportRepository) Get(id string) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ? AND deleted_at IS NULL`
	return r.getWithRows(r.db.QueryRow(query, id), id)
}

// GetBySequence retrieves a report and its rows by its sequence number
func (r *ReportRepository) GetBySequence(sequence int) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE sequence = ? AND deleted_at IS NULL`
	return r.getWithRows(r.db.QueryRow(query, sequence), fmt.Sprintf("#%d", sequence))
}

func (r *ReportRepository) getWithRows(row *sql.Row, ident string) (*models.Report, error) {
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrReportNotFound, ident)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.Rows(report.ID())
	if err != nil {
		return nil, err
	}
	report.SetRows(rows)
	return report, nil
}

// Update replaces the link and rows of an existing report
func (r *ReportRepository) Update(report *models.Report) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	report.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE reports
		SET link = ?, track_count = ?, matched_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := tx.Exec(query, report.Link(), report.TrackCount(), report.MatchedCount(), now, report.ID())
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrReportNotFound, report.ID())
	}

	if _, err := tx.Exec(`DELETE FROM report_rows WHERE report_id = ?`, report.ID()); err != nil {
		return fmt.Errorf("failed to clear report rows: %w", err)
	}
	if err := insertRows(tx, report.ID(), report.Rows()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// Delete soft-deletes a report by ID
func (r *ReportRepository) Delete(id string) error {
	query := `
		UPDATE reports
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrReportNotFound, id)
	}
	return nil
}

// List retrieves reports matching the given criteria, newest first, without their rows.
//
// Supported criteria: "source_type" (string), "source_id" (string), "limit" (int).
func (r *ReportRepository) List(criteria map[string]any) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE deleted_at IS NULL`
	args := []any{}

	if sourceType, ok := criteria["source_type"].(string); ok && sourceType != "" {
		query += " AND source_type = ?"
		args = append(args, sourceType)
	}

	if sourceID, ok := criteria["source_id"].(string); ok && sourceID != "" {
		query += " AND source_id = ?"
		args = append(args, sourceID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return reports, nil
}

// Rows retrieves the rows of a report in their original order
func (r *ReportRepository) Rows(reportID string) ([]models.ResultRow, error) {
	query := `
		SELECT song, artist, bpm, key_code, duration, energy
		FROM report_rows
		WHERE report_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report rows: %w", err)
	}
	defer rows.Close()

	result := []models.ResultRow{}
	for rows.Next() {
		var row models.ResultRow
		if err := rows.Scan(&row.Song, &row.Artist, &row.BPM, &row.Key, &row.Duration, &row.Energy); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return result, nil
}

func insertRows(tx *sql.Tx, reportID string, rows []models.ResultRow) error {
	stmt, err := tx.Prepare(`
		INSERT INTO report_rows (report_id, position, song, artist, bpm, key_code, duration, energy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.Exec(reportID, i, row.Song, row.Artist, row.BPM, row.Key, row.Duration, row.Energy); err != nil {
			return fmt.Errorf("failed to insert report row %d: %w", i, err)
		}
	}
	return nil
}

// scanner is satisfied by [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

// scanReport scans a single row into a [models.Report] without its rows
func scanReport(s scanner) (*models.Report, error) {
	var (
		id           string
		sequence     int
		link         string
		sourceType   string
		sourceID     string
		trackCount   int
		matchedCount int
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := s.Scan(&id, &sequence, &link, &sourceType, &sourceID, &trackCount, &matchedCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestoreReport(
		id, sequence, link, models.RefType(sourceType), sourceID,
		trackCount, matchedCount, createdAt, updatedAt, deleted,
	), nil
}

var _ models.Repository[*models.Report] = (*ReportRepository)(nil)
