package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/events"
	"github.com/ganot/motion-collector/internal/repository"
)

const selectRecording = `
		SELECT
			id, display_name, file_name, local_path, remote_path, state,
			sample_count, duration_seconds, upload_progress, uploaded,
			created_at, modified_at
		FROM recordings
	`

type rowScanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RecordingRepository implements recording.Repository for SQLite. Every
// successful save is announced on the change bus.
type RecordingRepository struct {
	db      *DB
	changes *events.Bus[events.Change]
}

// NewRecordingRepository creates a new RecordingRepository. changes may be nil.
func NewRecordingRepository(db *DB, changes *events.Bus[events.Change]) *RecordingRepository {
	return &RecordingRepository{db: db, changes: changes}
}

// Create inserts a new recording
func (r *RecordingRepository) Create(ctx context.Context, rec *recording.Recording) error {
	query := `
		INSERT INTO recordings (
			id, display_name, file_name, local_path, remote_path, state,
			sample_count, duration_seconds, upload_progress, uploaded,
			created_at, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.DisplayName,
		rec.FileName,
		rec.LocalPath,
		rec.RemotePath,
		rec.State,
		rec.SampleCount,
		rec.DurationSeconds,
		rec.UploadProgress,
		rec.Uploaded,
		rec.CreatedAt,
		rec.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create recording: %w", err)
	}

	r.publish(events.ChangeCreated, rec.ID)
	return nil
}

// Get retrieves a recording by ID
func (r *RecordingRepository) Get(ctx context.Context, id string) (*recording.Recording, error) {
	rec, err := scanRecording(r.db.QueryRowContext(ctx, selectRecording+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	return rec, nil
}

// List returns recordings newest first
func (r *RecordingRepository) List(ctx context.Context, opts recording.ListOptions) ([]recording.Recording, error) {
	query := selectRecording
	args := []any{}

	if len(opts.States) > 0 {
		query += " WHERE state IN (" + placeholders(len(opts.States)) + ")"
		for _, s := range opts.States {
			args = append(args, s)
		}
	}

	query += " ORDER BY display_name DESC, created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	return queryRecordings(ctx, r.db, query, args...)
}

// Mutate loads a recording, applies fn and saves the result in one transaction.
// Nothing is written when fn fails.
func (r *RecordingRepository) Mutate(ctx context.Context, id string, fn func(*recording.Recording) error) (*recording.Recording, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rec, err := scanRecording(tx.QueryRowContext(ctx, selectRecording+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recording: %w", err)
	}

	if err := fn(rec); err != nil {
		return nil, err
	}
	rec.ID = id

	query := `
		UPDATE recordings
		SET remote_path = ?, state = ?, sample_count = ?, duration_seconds = ?,
		    upload_progress = ?, uploaded = ?, modified_at = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query,
		rec.RemotePath,
		rec.State,
		rec.SampleCount,
		rec.DurationSeconds,
		rec.UploadProgress,
		rec.Uploaded,
		rec.ModifiedAt,
		id,
	); err != nil {
		return nil, fmt.Errorf("failed to update recording: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recording: %w", err)
	}

	r.publish(events.ChangeUpdated, id)
	return rec, nil
}

// Delete removes a recording
func (r *RecordingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	r.publish(events.ChangeDeleted, id)
	return nil
}

// NextEligible returns the newest finished recording that has samples and
// has not been uploaded.
func (r *RecordingRepository) NextEligible(ctx context.Context) (*recording.Recording, error) {
	query := selectRecording + `
		WHERE uploaded = 0 AND sample_count > 0 AND state = ?
		ORDER BY display_name DESC
		LIMIT 1
	`
	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, recording.StateDone))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible recording: %w", err)
	}
	return rec, nil
}

// Inconsistent returns recordings flagged uploaded without being in the uploaded state.
func (r *RecordingRepository) Inconsistent(ctx context.Context) ([]recording.Recording, error) {
	query := selectRecording + " WHERE uploaded = 1 AND state != ? ORDER BY display_name DESC"
	return queryRecordings(ctx, r.db, query, recording.StateUploaded)
}

// Reconcile repairs rows left mid-transition. The uploaded flag wins over
// the state column: flagged rows move to uploaded, and unflagged rows claiming
// uploaded fall back to done. Recording and uploading rows fall back to done
// only when they were last saved before staleBefore, so a session or transfer
// still owned by a live process is left alone. It returns the IDs it changed.
func (r *RecordingRepository) Reconcile(ctx context.Context, staleBefore time.Time) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	candidates, err := queryRecordings(ctx, tx, selectRecording+`
		WHERE (uploaded = 1 AND state != ?)
		   OR (uploaded = 0 AND state IN (?, ?, ?))
	`, recording.StateUploaded, recording.StateRecording, recording.StateUploading, recording.StateUploaded)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, rec := range candidates {
		target := recording.StateDone
		switch {
		case rec.Uploaded:
			target = recording.StateUploaded
		case rec.State == recording.StateUploaded:
			// uploaded tag without the flag
		case !rec.ModifiedAt.Before(staleBefore):
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE recordings SET state = ? WHERE id = ?`, target, rec.ID); err != nil {
			return nil, fmt.Errorf("failed to reconcile recording %s: %w", rec.ID, err)
		}
		ids = append(ids, rec.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconcile: %w", err)
	}

	for _, id := range ids {
		r.publish(events.ChangeUpdated, id)
	}
	return ids, nil
}

func (r *RecordingRepository) publish(kind events.ChangeKind, id string) {
	if r.changes == nil {
		return
	}
	r.changes.Publish(events.Change{Kind: kind, RecordingID: id})
}

func queryRecordings(ctx context.Context, q queryer, query string, args ...any) ([]recording.Recording, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recs []recording.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recording rows: %w", err)
	}
	return recs, nil
}

func scanRecording(row rowScanner) (*recording.Recording, error) {
	var rec recording.Recording
	if err := row.Scan(
		&rec.ID,
		&rec.DisplayName,
		&rec.FileName,
		&rec.LocalPath,
		&rec.RemotePath,
		&rec.State,
		&rec.SampleCount,
		&rec.DurationSeconds,
		&rec.UploadProgress,
		&rec.Uploaded,
		&rec.CreatedAt,
		&rec.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
