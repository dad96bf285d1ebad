package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sonorus-backend/internal/apperr"
	"sonorus-backend/internal/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordRepository handles database operations for one entity's records.
// Every entity table shares the same shape: id, created_by, created_at and a
// jsonb payload column.
type RecordRepository struct {
	db    *pgxpool.Pool
	table string
}

// Tables backing the entity registry.
var entityTables = map[string]string{
	entity.EntityAlbum:  "albums",
	entity.EntityReview: "reviews",
	entity.EntityFollow: "follows",
}

// NewRecordRepository creates a record repository for an entity name
func NewRecordRepository(db *pgxpool.Pool, entityName string) (*RecordRepository, error) {
	table, ok := entityTables[entityName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownEntity, entityName)
	}
	return &RecordRepository{db: db, table: table}, nil
}

// Insert stores a new record
func (r *RecordRepository) Insert(ctx context.Context, rec *entity.Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("failed to encode record data: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, created_by, created_at, data)
		VALUES ($1, $2, $3, $4)
	`, r.table)
	if _, err := r.db.Exec(ctx, query, rec.ID, rec.CreatedBy, rec.CreatedAt, data); err != nil {
		return apperr.Store(fmt.Errorf("failed to insert record: %w", err))
	}
	return nil
}

// GetByID retrieves a record by ID
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*entity.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, created_by, created_at, data
		FROM %s
		WHERE id = $1
	`, r.table)
	rec, err := r.scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("record %s not found", id)
		}
		return nil, apperr.Store(fmt.Errorf("failed to get record: %w", err))
	}
	return rec, nil
}

// List retrieves records matching a filter, optionally ordered and bounded.
// Filter keys address envelope columns or payload fields; slice values match
// by set membership.
func (r *RecordRepository) List(ctx context.Context, filter entity.Filter, opts entity.ListOptions) ([]*entity.Record, error) {
	query := fmt.Sprintf("SELECT id, created_by, created_at, data FROM %s", r.table)
	args := make([]any, 0, len(filter))

	where := ""
	for field, value := range filter {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		switch v := value.(type) {
		case []string:
			args = append(args, v)
			where += fmt.Sprintf("%s = ANY($%d)", r.column(field), len(args))
		case []any:
			set := make([]string, 0, len(v))
			for _, item := range v {
				set = append(set, fmt.Sprint(item))
			}
			args = append(args, set)
			where += fmt.Sprintf("%s = ANY($%d)", r.column(field), len(args))
		default:
			args = append(args, fmt.Sprint(v))
			where += fmt.Sprintf("%s = $%d", r.column(field), len(args))
		}
	}
	query += where

	if opts.OrderBy != "" {
		direction := "ASC"
		if opts.Descending {
			direction = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", r.column(opts.OrderBy), direction)
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("failed to list records: %w", err))
	}
	defer rows.Close()

	var records []*entity.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, apperr.Store(fmt.Errorf("failed to scan record: %w", err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(fmt.Errorf("error iterating records: %w", err))
	}
	return records, nil
}

// UpdateData replaces the payload of a record
func (r *RecordRepository) UpdateData(ctx context.Context, id string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode record data: %w", err)
	}
	query := fmt.Sprintf("UPDATE %s SET data = $1 WHERE id = $2", r.table)
	result, err := r.db.Exec(ctx, query, encoded, id)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to update record: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("record %s not found", id)
	}
	return nil
}

// Delete removes a record by ID
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table)
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to delete record: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFoundf("record %s not found", id)
	}
	return nil
}

// column maps a field path to a SQL expression. Callers validate payload
// field names against the entity schema before they reach here.
func (r *RecordRepository) column(field string) string {
	switch field {
	case "id", "created_by", "created_at":
		return field
	}
	return fmt.Sprintf("data->>'%s'", field)
}

func (r *RecordRepository) scanRecord(row pgx.Row) (*entity.Record, error) {
	var rec entity.Record
	var data []byte
	if err := row.Scan(&rec.ID, &rec.CreatedBy, &rec.CreatedAt, &data); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return nil, fmt.Errorf("failed to decode record data: %w", err)
	}
	return &rec, nil
}
