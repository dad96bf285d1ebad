package services

import (
	"context"
	"errors"
	"time"

	"sonorus-backend/internal/apperr"
	"sonorus-backend/internal/entity"

	"github.com/google/uuid"
)

// RecordStore is the persistence surface the store façade drives, one per
// entity table.
type RecordStore interface {
	Insert(ctx context.Context, rec *entity.Record) error
	GetByID(ctx context.Context, id string) (*entity.Record, error)
	List(ctx context.Context, filter entity.Filter, opts entity.ListOptions) ([]*entity.Record, error)
	UpdateData(ctx context.Context, id string, data map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Store is the entity access façade. Every operation validates the payload
// against the schema registry, evaluates the entity's access rule for the
// acting user, and only then touches the backing table. Reads re-apply the
// read rule per row.
type Store struct {
	repos map[string]RecordStore
}

// NewStore creates a store over per-entity repositories keyed by entity name
func NewStore(repos map[string]RecordStore) *Store {
	return &Store{repos: repos}
}

func (s *Store) resolve(entityName string) (*entity.Schema, RecordStore, error) {
	schema, err := entity.GetSchema(entityName)
	if err != nil {
		return nil, nil, apperr.Validationf("%v", err)
	}
	repo, ok := s.repos[entityName]
	if !ok {
		return nil, nil, apperr.Validationf("no repository for entity %q", entityName)
	}
	return schema, repo, nil
}

// Create validates, authorizes and stores a new record, stamping id,
// created_at and created_by.
func (s *Store) Create(ctx context.Context, entityName string, actor *entity.Actor, payload map[string]any) (*entity.Record, error) {
	schema, repo, err := s.resolve(entityName)
	if err != nil {
		return nil, err
	}

	data := schema.Normalize(payload)
	if err := schema.Validate(data); err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	candidate := &entity.Record{Data: data}
	if !entity.Authorize(schema, entity.OpCreate, actor, candidate) {
		return nil, apperr.Authorizationf("create %s denied", entityName)
	}

	if entityName == entity.EntityFollow {
		if err := s.rejectDuplicateFollow(ctx, repo, data); err != nil {
			return nil, err
		}
	}

	rec := &entity.Record{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		CreatedBy: actor.Email,
		Data:      data,
	}
	if err := repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// At most one follow per (follower, following) pair. The access rules do not
// express uniqueness, so the façade checks before the insert.
func (s *Store) rejectDuplicateFollow(ctx context.Context, repo RecordStore, data map[string]any) error {
	existing, err := repo.List(ctx, entity.Filter{
		"follower_email":  data["follower_email"],
		"following_email": data["following_email"],
	}, entity.ListOptions{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return apperr.Validationf("already following %v", data["following_email"])
	}
	return nil
}

// List retrieves records matching a filter, dropping rows the actor's read
// rule does not permit.
func (s *Store) List(ctx context.Context, entityName string, actor *entity.Actor, filter entity.Filter, opts entity.ListOptions) ([]*entity.Record, error) {
	schema, repo, err := s.resolve(entityName)
	if err != nil {
		return nil, err
	}
	for field := range filter {
		if err := validateField(schema, field); err != nil {
			return nil, err
		}
	}
	if opts.OrderBy != "" {
		if err := validateField(schema, opts.OrderBy); err != nil {
			return nil, err
		}
	}

	records, err := repo.List(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	visible := make([]*entity.Record, 0, len(records))
	for _, rec := range records {
		if entity.Authorize(schema, entity.OpRead, actor, rec) {
			visible = append(visible, rec)
		}
	}
	return visible, nil
}

// Get retrieves a single record by id. A record the actor's read rule does
// not permit is reported as not found rather than leaked.
func (s *Store) Get(ctx context.Context, entityName string, actor *entity.Actor, id string) (*entity.Record, error) {
	schema, repo, err := s.resolve(entityName)
	if err != nil {
		return nil, err
	}
	rec, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.Authorize(schema, entity.OpRead, actor, rec) {
		return nil, apperr.NotFoundf("record %s not found", id)
	}
	return rec, nil
}

// Update merges a patch into an existing record after authorizing against
// the stored row, then re-validates the merged payload.
func (s *Store) Update(ctx context.Context, entityName string, actor *entity.Actor, id string, patch map[string]any) (*entity.Record, error) {
	schema, repo, err := s.resolve(entityName)
	if err != nil {
		return nil, err
	}
	rec, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.Authorize(schema, entity.OpUpdate, actor, rec) {
		return nil, apperr.Authorizationf("update %s denied", entityName)
	}

	merged := make(map[string]any, len(rec.Data)+len(patch))
	for k, v := range rec.Data {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	merged = schema.Normalize(merged)
	if err := schema.Validate(merged); err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	if err := repo.UpdateData(ctx, id, merged); err != nil {
		return nil, err
	}
	rec.Data = merged
	return rec, nil
}

// Delete removes a record after authorizing against the stored row.
func (s *Store) Delete(ctx context.Context, entityName string, actor *entity.Actor, id string) error {
	schema, repo, err := s.resolve(entityName)
	if err != nil {
		return err
	}
	rec, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !entity.Authorize(schema, entity.OpDelete, actor, rec) {
		return apperr.Authorizationf("delete %s denied", entityName)
	}
	return repo.Delete(ctx, id)
}

func validateField(schema *entity.Schema, field string) error {
	switch field {
	case "id", "created_by", "created_at":
		return nil
	}
	if _, ok := schema.Properties[field]; !ok {
		return apperr.Validationf("unknown field %q for entity %s", field, schema.Name)
	}
	return nil
}

// IsNotFound reports whether an error is a not-found failure. Kept here so
// handlers do not reach into repositories for the distinction.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
