package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeweeks/internal/common"
	"lifeweeks/internal/logging"
	"lifeweeks/internal/snapshot"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(NewMemoryRepositories(), logger, WithNow(func() time.Time { return testNow }))
}

func birthDate() time.Time {
	return time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func onboard(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.SetBirthDate(context.Background(), birthDate()))
}

func TestGetSettings_AbsentBeforeOnboarding(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestSetBirthDate_ThenGetSettings(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)

	settings, err := s.GetSettings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, birthDate(), settings.BirthDate)
	assert.Equal(t, snapshot.DefaultLifeExpectancyYears, settings.LifeExpectancyYears)
}

func TestGetSettings_OutOfRangeStoredExpectancyFallsBack(t *testing.T) {
	// a hand-edited database (or one written before the bounds existed) can
	// hold any value; reads must not surface it
	s := newTestStore(t)
	ctx := context.Background()
	onboard(t, s)
	require.NoError(t, s.repos.Metadata.Set(ctx, keyLifeExpectancy, []byte("150")))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.DefaultLifeExpectancyYears, settings.LifeExpectancyYears)
}

func TestSetBirthDate_RejectsFuture(t *testing.T) {
	s := newTestStore(t)

	err := s.SetBirthDate(context.Background(), testNow.AddDate(0, 0, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorInvalidDate))
}

func TestGetSettings_MigratesLegacyRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.repos.Metadata.Set(ctx, keyLegacyRecord, []byte(`{"dobISO":"1985-11-03","locked":true}`)))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "1985-11-03", settings.BirthDate.Format("2006-01-02"))
	assert.Equal(t, snapshot.DefaultLifeExpectancyYears, settings.LifeExpectancyYears)

	// legacy key is gone, discrete keys exist
	raw, err := s.repos.Metadata.Get(ctx, keyLegacyRecord)
	require.NoError(t, err)
	assert.Nil(t, raw)

	again, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, again)
}

func TestGetSettings_DropsCorruptLegacyRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.repos.Metadata.Set(ctx, keyLegacyRecord, []byte(`{broken`)))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	raw, err := s.repos.Metadata.Get(ctx, keyLegacyRecord)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSetLifeExpectancy_Bounds(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	require.NoError(t, s.SetLifeExpectancy(ctx, 90))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90, settings.LifeExpectancyYears)

	for _, bad := range []int{59, 111, 0, -5} {
		err := s.SetLifeExpectancy(ctx, bad)
		require.Error(t, err, "years=%d", bad)
		assert.True(t, errors.Is(err, common.ErrorOutOfRange))
	}
}

func TestAddMark_DerivesWeekIndex(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	id, err := s.AddMark(ctx, MarkFields{
		Title: "Graduation",
		Kind:  snapshot.KindMilestone,
		Date:  birthDate().AddDate(0, 0, 15), // two full weeks and a day
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	ms, err := s.ListMarks(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, 2, ms[0].WeekIndex)
	assert.Equal(t, id, ms[0].ID)
}

func TestAddMark_RequiresOnboarding(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddMark(context.Background(), MarkFields{Title: "x", Kind: snapshot.KindNote, Date: testNow})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestAddMark_Validation(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	_, err := s.AddMark(ctx, MarkFields{Title: "", Kind: snapshot.KindNote, Date: testNow})
	assert.True(t, errors.Is(err, common.ErrorValidation))

	_, err = s.AddMark(ctx, MarkFields{Title: "t", Kind: "banana", Date: testNow})
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestUpdateMark_RecomputesWeekIndex(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	id, err := s.AddMark(ctx, MarkFields{Title: "trip", Kind: snapshot.KindPlan, Date: birthDate().AddDate(0, 0, 7)})
	require.NoError(t, err)

	require.NoError(t, s.UpdateMark(ctx, id, MarkFields{
		Title: "trip (moved)", Kind: snapshot.KindPlan, Date: birthDate().AddDate(0, 0, 70),
	}))

	ms, err := s.ListMarks(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "trip (moved)", ms[0].Title)
	assert.Equal(t, 10, ms[0].WeekIndex)
}

func TestUpdateMark_MissingIDIsNotFound(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)

	err := s.UpdateMark(context.Background(), "nope", MarkFields{Title: "t", Kind: snapshot.KindNote, Date: testNow})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestRemoveMark_AbsentIDLeavesOthersUntouched(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	id, err := s.AddMark(ctx, MarkFields{Title: "keep me", Kind: snapshot.KindNote, Date: testNow})
	require.NoError(t, err)

	require.NoError(t, s.RemoveMark(ctx, "absent"))

	ms, err := s.ListMarks(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, id, ms[0].ID)
}

func TestSetBirthDate_ClearsExistingMarks(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	_, err := s.AddMark(ctx, MarkFields{Title: "about to vanish", Kind: snapshot.KindNote, Date: testNow})
	require.NoError(t, err)

	require.NoError(t, s.SetBirthDate(ctx, birthDate().AddDate(1, 0, 0)))

	ms, err := s.ListMarks(ctx)
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestResetAll(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	_, err := s.AddMark(ctx, MarkFields{Title: "m", Kind: snapshot.KindNote, Date: testNow})
	require.NoError(t, err)

	require.NoError(t, s.ResetAll(ctx))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	ms, err := s.ListMarks(ctx)
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestExportImport_RoundTripIsNoOp(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	_, err := s.AddMark(ctx, MarkFields{Title: "one", Kind: snapshot.KindMilestone, Date: birthDate().AddDate(5, 0, 0), Tag: "life"})
	require.NoError(t, err)
	_, err = s.AddMark(ctx, MarkFields{Title: "two", Kind: snapshot.KindNote, Date: birthDate().AddDate(20, 0, 0), Notes: "details"})
	require.NoError(t, err)

	first, err := s.ExportSnapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ImportSnapshot(ctx, first))

	second, err := s.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestImportSnapshot_RejectsUnknownVersion_StateUntouched(t *testing.T) {
	s := newTestStore(t)
	onboard(t, s)
	ctx := context.Background()

	id, err := s.AddMark(ctx, MarkFields{Title: "still here", Kind: snapshot.KindNote, Date: testNow})
	require.NoError(t, err)

	err = s.ImportSnapshot(ctx, []byte(`{"formatVersion": 99, "marks": []}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnsupportedVersion))

	ms, err := s.ListMarks(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, id, ms[0].ID)
}

func TestSubscribe_NotifiedOnEachMutation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ch, cancel := s.Subscribe()
	defer cancel()

	drain := func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}

	require.False(t, drain(), "no signal before any mutation")

	require.NoError(t, s.SetBirthDate(ctx, birthDate()))
	require.True(t, drain(), "signal after SetBirthDate")

	_, err := s.AddMark(ctx, MarkFields{Title: "m", Kind: snapshot.KindNote, Date: testNow})
	require.NoError(t, err)
	require.True(t, drain(), "signal after AddMark")

	require.NoError(t, s.RemoveMark(ctx, "absent"))
	require.True(t, drain(), "signal after RemoveMark even without a match")

	cancel()
	require.NoError(t, s.ResetAll(ctx))
	require.False(t, drain(), "no signal after unsubscribe")
}

func TestLastRemoteVersion_Bookkeeping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.LastRemoteVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, s.SetLastRemoteVersion(ctx, 1717243200123))

	v, err = s.LastRemoteVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1717243200123), v)
}
