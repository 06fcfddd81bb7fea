package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parcel-tracking-service/internal/domain"
	"parcel-tracking-service/internal/ports"
)

// SQLite-backed implementation of the ParcelRepository port. Records are
// stored as JSON documents keyed by post ID, with the delivery flag and
// update time mirrored into columns for cheap filtering.
type SqliteParcelRepository struct{ DB *sql.DB }

func NewSqliteParcelRepository(db *sql.DB) *SqliteParcelRepository {
	return &SqliteParcelRepository{DB: db}
}

func (s *SqliteParcelRepository) Create(ctx context.Context, rec *domain.ParcelRecord) error {
	if s.DB == nil {
		return errors.New("sqlite parcel repository: DB is nil")
	}
	if rec == nil || rec.PostID == "" {
		return errors.New("create parcel: record must have a post id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("create parcel: marshal record: %w", err)
	}

	query := `
	INSERT INTO parcel_records (post_id, data, is_delivered, updated_at)
	VALUES (?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, rec.PostID, string(data), boolToInt(rec.IsDelivered), rec.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("create parcel post_id=%s: %w", rec.PostID, err)
	}

	return nil
}

func (s *SqliteParcelRepository) Get(ctx context.Context, postID string) (*domain.ParcelRecord, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite parcel repository: DB is nil")
	}

	var data string
	query := `SELECT data FROM parcel_records WHERE post_id = ?;`
	err := s.DB.QueryRowContext(ctx, query, postID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrParcelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get parcel post_id=%s: %w", postID, err)
	}

	var rec domain.ParcelRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("get parcel post_id=%s: unmarshal record: %w", postID, err)
	}

	return &rec, nil
}

// MergeSenderDetails performs a read-modify-write inside a transaction,
// touching only the sender details and update time.
func (s *SqliteParcelRepository) MergeSenderDetails(ctx context.Context, postID string, sender domain.ContactDetails) error {
	if s.DB == nil {
		return errors.New("sqlite parcel repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("merge sender post_id=%s: begin tx: %w", postID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM parcel_records WHERE post_id = ?;`, postID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrParcelNotFound
	}
	if err != nil {
		return fmt.Errorf("merge sender post_id=%s: read record: %w", postID, err)
	}

	var rec domain.ParcelRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return fmt.Errorf("merge sender post_id=%s: unmarshal record: %w", postID, err)
	}

	rec.SenderDetails = &sender
	rec.UpdatedAt = time.Now().UTC()

	updated, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("merge sender post_id=%s: marshal record: %w", postID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE parcel_records SET data = ?, updated_at = ? WHERE post_id = ?;`,
		string(updated), rec.UpdatedAt.Format(time.RFC3339), postID,
	); err != nil {
		return fmt.Errorf("merge sender post_id=%s: update record: %w", postID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("merge sender post_id=%s: commit tx: %w", postID, err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
