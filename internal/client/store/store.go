// Package store implements the Local Store: the single authoritative holder
// of settings and marks, backed by injected repositories and observable
// through a subscription interface. Every mutation persists first, then
// broadcasts one payload-less change notification.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifeweeks/internal/common"
	"lifeweeks/internal/dates"
	"lifeweeks/internal/logging"
	"lifeweeks/internal/snapshot"
)

// Metadata keys. keyLegacyRecord is the v1 combined record ({dobISO, locked})
// written by early builds; it is migrated to the discrete keys on first read.
const (
	keyBirthDate         = "birth_date"
	keyLifeExpectancy    = "life_expectancy_years"
	keyLastRemoteVersion = "last_remote_version"
	keyLegacyRecord      = "lifeweeks.v1"
)

// Settings is the singleton device configuration.
type Settings struct {
	BirthDate           time.Time
	LifeExpectancyYears int
}

// MarkFields carries the user-editable part of a mark; id and week index are
// managed by the store.
type MarkFields struct {
	Title string
	Kind  string
	Date  time.Time
	Tag   string
	Notes string
}

type legacyRecord struct {
	DobISO string `json:"dobISO"`
	Locked bool   `json:"locked"`
}

// Store is constructed once per process and passed by handle to all
// consumers; there is no ambient global.
type Store struct {
	repos  *Repositories
	logger logging.Logger
	now    func() time.Time

	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// Option configures a Store.
type Option func(*Store)

// WithNow overrides the store's clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(repos *Repositories, logger logging.Logger, opts ...Option) *Store {
	s := &Store{
		repos:  repos,
		logger: logger.With("component", "store"),
		now:    time.Now,
		subs:   make(map[int]chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe registers a change listener. The returned channel receives one
// (possibly coalesced) signal after every mutation; the cancel func
// unregisters it. The channel carries no payload: consumers re-read whatever
// they need.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// notify broadcasts the change signal. Sends are non-blocking: a subscriber
// that has not drained its previous signal simply coalesces.
func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// GetSettings returns the current settings, or (nil, nil) when onboarding
// has not happened yet. A legacy combined record is transparently upgraded
// to the discrete keys with the default expectancy.
func (s *Store) GetSettings(ctx context.Context) (*Settings, error) {
	birthRaw, err := s.repos.Metadata.Get(ctx, keyBirthDate)
	if err != nil {
		return nil, err
	}

	if birthRaw == nil {
		migrated, err := s.migrateLegacyRecord(ctx)
		if err != nil {
			return nil, err
		}
		if migrated == nil {
			return nil, nil
		}
		return migrated, nil
	}

	birth, err := dates.ParseISO(string(birthRaw))
	if err != nil {
		return nil, fmt.Errorf("stored birth date is corrupt: %w", err)
	}

	// A stored value outside the allowed bounds (hand-edited database, or a
	// file written before the bounds existed) falls back to the default.
	years := snapshot.DefaultLifeExpectancyYears
	if raw, err := s.repos.Metadata.Get(ctx, keyLifeExpectancy); err != nil {
		return nil, err
	} else if raw != nil {
		if n, convErr := strconv.Atoi(string(raw)); convErr == nil && snapshot.ValidExpectancy(n) {
			years = n
		}
	}

	return &Settings{BirthDate: birth, LifeExpectancyYears: years}, nil
}

// migrateLegacyRecord reads the v1 combined record, writes the discrete keys
// with the default expectancy, removes the old key, and returns the upgraded
// settings. Returns (nil, nil) if there is nothing to migrate.
func (s *Store) migrateLegacyRecord(ctx context.Context) (*Settings, error) {
	raw, err := s.repos.Metadata.Get(ctx, keyLegacyRecord)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rec legacyRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.DobISO == "" {
		// unreadable legacy record: drop it rather than fail every read
		s.logger.Warn(ctx, "dropping unreadable legacy record")
		return nil, s.repos.Metadata.Delete(ctx, keyLegacyRecord)
	}

	birth, err := dates.ParseISO(rec.DobISO)
	if err != nil {
		s.logger.Warn(ctx, "dropping legacy record with invalid date", "date", rec.DobISO)
		return nil, s.repos.Metadata.Delete(ctx, keyLegacyRecord)
	}

	if err := s.repos.Metadata.Set(ctx, keyBirthDate, []byte(dates.FormatISO(birth))); err != nil {
		return nil, err
	}
	if err := s.setExpectancyKey(ctx, snapshot.DefaultLifeExpectancyYears); err != nil {
		return nil, err
	}
	if err := s.repos.Metadata.Delete(ctx, keyLegacyRecord); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "migrated legacy settings record")
	return &Settings{BirthDate: birth, LifeExpectancyYears: snapshot.DefaultLifeExpectancyYears}, nil
}

func (s *Store) setExpectancyKey(ctx context.Context, years int) error {
	return s.repos.Metadata.Set(ctx, keyLifeExpectancy, []byte(strconv.Itoa(years)))
}

// SetBirthDate stores a new birth date and clears all marks. Week indices
// are frozen at write time, so a different birth date would make every
// stored index silently wrong; clearing is the stated policy and callers
// must confirm it with the user first.
func (s *Store) SetBirthDate(ctx context.Context, birth time.Time) error {
	if dates.DayOf(birth).After(dates.DayOf(s.now())) {
		return fmt.Errorf("%w: birth date is in the future", common.ErrorInvalidDate)
	}

	err := s.repos.atomically(ctx, func(ctx context.Context, repos *Repositories) error {
		if err := repos.Metadata.Set(ctx, keyBirthDate, []byte(dates.FormatISO(birth))); err != nil {
			return err
		}
		if raw, err := repos.Metadata.Get(ctx, keyLifeExpectancy); err != nil {
			return err
		} else if raw == nil {
			years := []byte(strconv.Itoa(snapshot.DefaultLifeExpectancyYears))
			if err := repos.Metadata.Set(ctx, keyLifeExpectancy, years); err != nil {
				return err
			}
		}
		return repos.Marks.DeleteAll(ctx)
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// SetLifeExpectancy updates the horizon, rejecting values outside the
// documented 60..110 bound with ErrorOutOfRange.
func (s *Store) SetLifeExpectancy(ctx context.Context, years int) error {
	if !snapshot.ValidExpectancy(years) {
		return fmt.Errorf("%w: life expectancy %d (allowed %d..%d)",
			common.ErrorOutOfRange, years, snapshot.MinLifeExpectancyYears, snapshot.MaxLifeExpectancyYears)
	}
	if err := s.setExpectancyKey(ctx, years); err != nil {
		return err
	}
	s.notify()
	return nil
}

// ListMarks returns all marks in insertion order. Consumers sort if they
// need a date ordering.
func (s *Store) ListMarks(ctx context.Context) ([]snapshot.Mark, error) {
	return s.repos.Marks.GetAll(ctx)
}

func (s *Store) validateFields(f *MarkFields) error {
	if f.Title == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrorValidation)
	}
	if !snapshot.ValidKind(f.Kind) {
		return fmt.Errorf("%w: unknown kind %q", common.ErrorValidation, f.Kind)
	}
	return nil
}

// AddMark creates a mark with a fresh id, deriving the week index from the
// mark date and the current birth date, and returns the new id.
func (s *Store) AddMark(ctx context.Context, f MarkFields) (string, error) {
	if err := s.validateFields(&f); err != nil {
		return "", err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	if settings == nil {
		return "", fmt.Errorf("%w: birth date not set", common.ErrorNotFound)
	}

	m := &snapshot.Mark{
		ID:        uuid.NewString(),
		Title:     f.Title,
		Kind:      f.Kind,
		Date:      dates.FormatISO(f.Date),
		WeekIndex: dates.WeekIndex(settings.BirthDate, f.Date),
		Tag:       f.Tag,
		Notes:     f.Notes,
	}
	if err := s.repos.Marks.CreateOrUpdate(ctx, m); err != nil {
		return "", err
	}

	s.notify()
	return m.ID, nil
}

// UpdateMark rewrites an existing mark, recomputing its week index. A
// missing id fails with ErrorNotFound.
func (s *Store) UpdateMark(ctx context.Context, id string, f MarkFields) error {
	if err := s.validateFields(&f); err != nil {
		return err
	}
	if _, err := s.repos.Marks.GetByID(ctx, id); err != nil {
		return err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}
	if settings == nil {
		return fmt.Errorf("%w: birth date not set", common.ErrorNotFound)
	}

	m := &snapshot.Mark{
		ID:        id,
		Title:     f.Title,
		Kind:      f.Kind,
		Date:      dates.FormatISO(f.Date),
		WeekIndex: dates.WeekIndex(settings.BirthDate, f.Date),
		Tag:       f.Tag,
		Notes:     f.Notes,
	}
	if err := s.repos.Marks.CreateOrUpdate(ctx, m); err != nil {
		return err
	}

	s.notify()
	return nil
}

// RemoveMark deletes a mark if present. Removal is idempotent and always
// notifies, whether or not a match existed.
func (s *Store) RemoveMark(ctx context.Context, id string) error {
	if err := s.repos.Marks.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.notify()
	return nil
}

// ResetAll clears settings and marks entirely, in one transaction when the
// backend supports them.
func (s *Store) ResetAll(ctx context.Context) error {
	err := s.repos.atomically(ctx, func(ctx context.Context, repos *Repositories) error {
		if err := repos.Marks.DeleteAll(ctx); err != nil {
			return err
		}
		return repos.Metadata.Clear(ctx)
	})
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// BuildSnapshot assembles the current state as a snapshot document.
func (s *Store) BuildSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	out := &snapshot.Snapshot{
		FormatVersion:       snapshot.FormatVersion,
		LifeExpectancyYears: snapshot.DefaultLifeExpectancyYears,
		Marks:               []snapshot.Mark{},
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		out.BirthDate = dates.FormatISO(settings.BirthDate)
		out.LifeExpectancyYears = settings.LifeExpectancyYears
	}

	ms, err := s.repos.Marks.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if ms != nil {
		out.Marks = ms
	}
	return out, nil
}

// ExportSnapshot serializes the current state for backup.
func (s *Store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	snap, err := s.BuildSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Encode(snap)
}

// ImportSnapshot decodes, validates and applies a snapshot document,
// replacing the current settings and marks wholesale. Validation failures
// leave the store untouched. Merging is the sync engine's job, not the
// codec's.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) error {
	snap, err := snapshot.Decode(data)
	if err != nil {
		return err
	}
	return s.ApplySnapshot(ctx, snap)
}

// ApplySnapshot overwrites local state with an already-decoded snapshot.
// Used by ImportSnapshot and by the sync engine's pull/reset paths. The
// whole replacement runs in one transaction, so a failure partway through
// leaves the previous state intact.
func (s *Store) ApplySnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	var birth time.Time
	if snap.BirthDate != "" {
		var err error
		birth, err = dates.ParseISO(snap.BirthDate)
		if err != nil {
			return fmt.Errorf("%w: bad birth date", common.ErrMalformedSnapshot)
		}
	}

	err := s.repos.atomically(ctx, func(ctx context.Context, repos *Repositories) error {
		if snap.BirthDate != "" {
			if err := repos.Metadata.Set(ctx, keyBirthDate, []byte(dates.FormatISO(birth))); err != nil {
				return err
			}
		} else {
			if err := repos.Metadata.Delete(ctx, keyBirthDate); err != nil {
				return err
			}
		}

		years := snap.LifeExpectancyYears
		if !snapshot.ValidExpectancy(years) {
			years = snapshot.DefaultLifeExpectancyYears
		}
		if err := repos.Metadata.Set(ctx, keyLifeExpectancy, []byte(strconv.Itoa(years))); err != nil {
			return err
		}

		return repos.Marks.ReplaceAll(ctx, snap.Marks)
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// LastRemoteVersion returns the remote document version recorded at the last
// successful pull or push, 0 if none.
func (s *Store) LastRemoteVersion(ctx context.Context) (int64, error) {
	raw, err := s.repos.Metadata.Get(ctx, keyLastRemoteVersion)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}

// SetLastRemoteVersion records the last-seen remote version. Bookkeeping
// only: no change notification is emitted.
func (s *Store) SetLastRemoteVersion(ctx context.Context, v int64) error {
	return s.repos.Metadata.Set(ctx, keyLastRemoteVersion, []byte(strconv.FormatInt(v, 10)))
}
