// Package records stores properties and information requests.
//
// Every mutation loads the whole collection, changes it in memory and writes
// the whole collection back under its key. A mutex serializes those
// sequences, so a write always happens-before the next read.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thehopecrystal/verify-properties/internal/access"
	"github.com/thehopecrystal/verify-properties/internal/lifecycle"
	"github.com/thehopecrystal/verify-properties/internal/models"
	"github.com/thehopecrystal/verify-properties/internal/notify"
	"github.com/thehopecrystal/verify-properties/internal/storage"
)

var (
	ErrUnauthenticated = errors.New(`not logged in`)
	ErrForbidden       = errors.New(`not allowed to change status`)
	ErrNotFound        = errors.New(`record not found`)
	ErrInvalidInput    = errors.New(`invalid input`)
)

type PropertyFields struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        models.PropertyType `json:"type"`
	Location    string              `json:"location"`
	Documents   []string            `json:"documents"`
}

type RequestFields struct {
	PreferredType  models.PropertyType   `json:"preferredType"`
	Location       string                `json:"location"`
	Purpose        models.RequestPurpose `json:"purpose"`
	AdditionalInfo string                `json:"additionalInfo"`
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIdGenerator(gen func() string) Option {
	return func(s *Store) { s.newId = gen }
}

type Store struct {
	storage  storage.Storage
	notifier notify.Notifier

	mu    sync.Mutex
	now   func() time.Time
	newId func() string
}

func New(s storage.Storage, n notify.Notifier, opts ...Option) *Store {
	store := &Store{
		storage:  s,
		notifier: n,
		now:      time.Now,
		newId:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.notifier == nil {
		store.notifier = notify.Multi{}
	}
	return store
}

// kind describes one record collection so the generic helpers below can
// serve both properties and requests.
type kind[T access.Owned, S lifecycle.Status] struct {
	key    string
	noun   string
	title  string
	id     func(T) string
	status func(T) S
	// stamp sets the status and the update time.
	stamp   func(*T, S, time.Time)
	updated func(T) time.Time
}

var propertyKind = kind[models.Property, models.PropertyStatus]{
	key:    storage.KeyProperties,
	noun:   `property`,
	title:  `Property`,
	id:     func(p models.Property) string { return p.Id },
	status: func(p models.Property) models.PropertyStatus { return p.Status },
	stamp: func(p *models.Property, status models.PropertyStatus, at time.Time) {
		p.Status = status
		p.UpdatedDate = at
	},
	updated: func(p models.Property) time.Time { return p.UpdatedDate },
}

var requestKind = kind[models.PropertyRequest, models.RequestStatus]{
	key:    storage.KeyRequests,
	noun:   `request`,
	title:  `Request`,
	id:     func(r models.PropertyRequest) string { return r.Id },
	status: func(r models.PropertyRequest) models.RequestStatus { return r.Status },
	stamp: func(r *models.PropertyRequest, status models.RequestStatus, at time.Time) {
		r.Status = status
		r.UpdatedDate = at
	},
	updated: func(r models.PropertyRequest) time.Time { return r.UpdatedDate },
}

func (s *Store) AddProperty(ctx context.Context, actor *models.Account, fields PropertyFields) (models.Property, error) {
	if actor != nil {
		if err := validateProperty(fields); err != nil {
			s.notifier.Notify(ctx, models.Failure(`Invalid property details`))
			return models.Property{}, err
		}
	}

	return add(ctx, s, propertyKind, actor, func(id, userId string, now time.Time) models.Property {
		documents := make([]string, len(fields.Documents))
		copy(documents, fields.Documents)

		return models.Property{
			Id:             id,
			UserId:         userId,
			Title:          fields.Title,
			Description:    fields.Description,
			Type:           fields.Type,
			Location:       fields.Location,
			Documents:      documents,
			Status:         lifecycle.InitialProperty,
			SubmissionDate: now,
			UpdatedDate:    now,
		}
	})
}

func (s *Store) AddRequest(ctx context.Context, actor *models.Account, fields RequestFields) (models.PropertyRequest, error) {
	if actor != nil {
		if err := validateRequest(fields); err != nil {
			s.notifier.Notify(ctx, models.Failure(`Invalid request details`))
			return models.PropertyRequest{}, err
		}
	}

	return add(ctx, s, requestKind, actor, func(id, userId string, now time.Time) models.PropertyRequest {
		return models.PropertyRequest{
			Id:             id,
			UserId:         userId,
			PreferredType:  fields.PreferredType,
			Location:       fields.Location,
			Purpose:        fields.Purpose,
			AdditionalInfo: fields.AdditionalInfo,
			Status:         lifecycle.InitialRequest,
			SubmissionDate: now,
			UpdatedDate:    now,
		}
	})
}

func validateProperty(fields PropertyFields) error {
	if !fields.Type.Valid() {
		return fmt.Errorf(`%w: property type %q`, ErrInvalidInput, fields.Type)
	}
	return nil
}

func validateRequest(fields RequestFields) error {
	if !fields.PreferredType.Valid() {
		return fmt.Errorf(`%w: preferred type %q`, ErrInvalidInput, fields.PreferredType)
	}
	if !fields.Purpose.Valid() {
		return fmt.Errorf(`%w: purpose %q`, ErrInvalidInput, fields.Purpose)
	}
	return nil
}

func add[T access.Owned, S lifecycle.Status](ctx context.Context, s *Store, k kind[T, S], actor *models.Account, build func(id, userId string, now time.Time) T) (T, error) {
	var zero T

	if actor == nil {
		s.notifier.Notify(ctx, models.Failure(`You must be logged in to submit a `+k.noun))
		return zero, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := storage.LoadCollection[T](ctx, s.storage, k.key)
	if err != nil {
		return zero, s.failed(ctx, `Failed to submit `+k.noun, err)
	}

	record := build(s.newId(), actor.Id, s.now().UTC())
	items = append(items, record)

	if err := storage.SaveCollection(ctx, s.storage, k.key, items); err != nil {
		return zero, s.failed(ctx, `Failed to submit `+k.noun, err)
	}

	slog.Info("Record submitted", "kind", k.noun, "id", k.id(record), "user_id", actor.Id)
	s.notifier.Notify(ctx, models.Success(k.title+` submitted successfully`))

	return record, nil
}

func (s *Store) failed(ctx context.Context, message string, err error) error {
	slog.Error(message, slog.Any("err", err))
	s.notifier.Notify(ctx, models.Failure(message))
	return err
}

// UpdatePropertyStatus moves a property to status. Only admins may call it.
func (s *Store) UpdatePropertyStatus(ctx context.Context, actor *models.Account, id string, status models.PropertyStatus) (models.Property, error) {
	return updateStatus(ctx, s, propertyKind, actor, id, status)
}

// UpdateRequestStatus moves a request to status. Only admins may call it.
func (s *Store) UpdateRequestStatus(ctx context.Context, actor *models.Account, id string, status models.RequestStatus) (models.PropertyRequest, error) {
	return updateStatus(ctx, s, requestKind, actor, id, status)
}

func updateStatus[T access.Owned, S lifecycle.Status](ctx context.Context, s *Store, k kind[T, S], actor *models.Account, id string, status S) (T, error) {
	var zero T

	if actor == nil {
		s.notifier.Notify(ctx, models.Failure(`You must be logged in to update a `+k.noun))
		return zero, ErrUnauthenticated
	}
	if !access.CanMutateStatus(*actor) {
		s.notifier.Notify(ctx, models.Failure(`Only administrators can change `+k.noun+` status`))
		return zero, ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := storage.LoadCollection[T](ctx, s.storage, k.key)
	if err != nil {
		return zero, s.failed(ctx, `Failed to update `+k.noun+` status`, err)
	}

	index := -1
	for i, item := range items {
		if k.id(item) == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.notifier.Notify(ctx, models.Failure(k.title+` not found`))
		return zero, fmt.Errorf(`%w: %s %s`, ErrNotFound, k.noun, id)
	}

	next, err := lifecycle.Transition(k.status(items[index]), status)
	if err != nil {
		s.notifier.Notify(ctx, models.Failure(`Unknown `+k.noun+` status`))
		return zero, err
	}

	now := s.now().UTC()
	if previous := k.updated(items[index]); now.Before(previous) {
		now = previous
	}

	record := items[index]
	k.stamp(&record, next, now)
	items[index] = record

	if err := storage.SaveCollection(ctx, s.storage, k.key, items); err != nil {
		return zero, s.failed(ctx, `Failed to update `+k.noun+` status`, err)
	}

	slog.Info("Status updated", "kind", k.noun, "id", id, "status", string(next), "by", actor.Id)
	s.notifier.Notify(ctx, models.Success(fmt.Sprintf(`%s status updated to %s`, k.title, string(next))))

	return record, nil
}

// ScopedProperties returns the properties actor may see; none without an
// actor.
func (s *Store) ScopedProperties(ctx context.Context, actor *models.Account) ([]models.Property, error) {
	return scoped(ctx, s, propertyKind, actor)
}

func (s *Store) ScopedRequests(ctx context.Context, actor *models.Account) ([]models.PropertyRequest, error) {
	return scoped(ctx, s, requestKind, actor)
}

func scoped[T access.Owned, S lifecycle.Status](ctx context.Context, s *Store, k kind[T, S], actor *models.Account) ([]T, error) {
	if actor == nil {
		return []T{}, nil
	}

	s.mu.Lock()
	items, err := storage.LoadCollection[T](ctx, s.storage, k.key)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return access.Visible(*actor, items), nil
}

func (s *Store) FindProperty(ctx context.Context, id string) (models.Property, error) {
	return find(ctx, s, propertyKind, id)
}

func (s *Store) FindRequest(ctx context.Context, id string) (models.PropertyRequest, error) {
	return find(ctx, s, requestKind, id)
}

func find[T access.Owned, S lifecycle.Status](ctx context.Context, s *Store, k kind[T, S], id string) (T, error) {
	var zero T

	s.mu.Lock()
	items, err := storage.LoadCollection[T](ctx, s.storage, k.key)
	s.mu.Unlock()
	if err != nil {
		return zero, err
	}

	for _, item := range items {
		if k.id(item) == id {
			return item, nil
		}
	}

	return zero, fmt.Errorf(`%w: %s %s`, ErrNotFound, k.noun, id)
}
