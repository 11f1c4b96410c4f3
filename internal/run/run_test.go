package run

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobwatch/internal/domain"
)

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

type fakeParser struct {
	records []domain.JobRecord
	warns   []string
	err     error
}

func (p *fakeParser) Parse(raw []byte) ([]domain.JobRecord, []string, error) {
	return p.records, p.warns, p.err
}

type memStore struct {
	set       domain.SeenSet
	loadWarns []string
	saveErr   error
	saved     []domain.SeenSet
}

func (m *memStore) Load() (domain.SeenSet, []string) {
	return m.set.Clone(), m.loadWarns
}

func (m *memStore) Save(set domain.SeenSet) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.set = set.Clone()
	m.saved = append(m.saved, set.Clone())
	return nil
}

type fakeNotifier struct {
	err   error
	calls [][]domain.JobRecord
}

func (n *fakeNotifier) Notify(ctx context.Context, newJobs []domain.JobRecord) error {
	n.calls = append(n.calls, newJobs)
	return n.err
}

type fakeArchive struct {
	inserted []string
	err      error
}

func (a *fakeArchive) Insert(ctx context.Context, rec domain.JobRecord, foundAt time.Time) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	a.inserted = append(a.inserted, rec.ID)
	return true, nil
}

func job(id string) domain.JobRecord {
	return domain.JobRecord{ID: id, Title: "Job " + id, Company: "Mercor", URL: "https://work.mercor.com/jobs/list_" + id}
}

func newRunner(f Fetcher, p Parser, s SeenStore, n Notifier, a Archiver) *Runner {
	return &Runner{
		Fetcher:   f,
		Parser:    p,
		Seen:      s,
		Notifier:  n,
		Archive:   a,
		TargetURL: "https://work.mercor.com/explore",
	}
}

func TestRunScenarioA(t *testing.T) {
	// seen={job-1}, current=[job-1, job-2] -> notify job-2, persist both.
	store := &memStore{set: domain.NewSeenSet("job-1")}
	notifier := &fakeNotifier{}
	archive := &fakeArchive{}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{records: []domain.JobRecord{job("job-1"), job("job-2")}},
		store, notifier, archive,
	)

	res := r.Run(context.Background())

	require.False(t, res.Failed(), "run failed: %v", res.Err)
	assert.Equal(t, domain.StageDone, res.Stage)
	require.Len(t, res.NewJobs, 1)
	assert.Equal(t, "job-2", res.NewJobs[0].ID)

	require.Len(t, notifier.calls, 1)
	assert.True(t, store.set.Has("job-1"))
	assert.True(t, store.set.Has("job-2"))
	assert.Equal(t, []string{"job-2"}, archive.inserted)
}

func TestRunScenarioBEmptyParse(t *testing.T) {
	// Parser finds nothing (page drifted): run completes Done with a
	// warning, no notification.
	store := &memStore{set: domain.NewSeenSet()}
	notifier := &fakeNotifier{}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{warns: []string{"no job cards found; page structure may have changed"}},
		store, notifier, nil,
	)

	res := r.Run(context.Background())

	require.False(t, res.Failed())
	assert.Equal(t, domain.StageDone, res.Stage)
	assert.Empty(t, res.NewJobs)
	assert.NotEmpty(t, res.Warnings)
	assert.Empty(t, notifier.calls, "notify must not be called with nothing new")
	require.Len(t, store.saved, 1, "empty run still materializes the state file")
	assert.Equal(t, 0, store.saved[0].Len())
}

func TestRunScenarioCFetchFailure(t *testing.T) {
	store := &memStore{set: domain.NewSeenSet("job-1")}
	notifier := &fakeNotifier{}
	r := newRunner(
		&fakeFetcher{err: errors.New("network error: get: context deadline exceeded")},
		&fakeParser{},
		store, notifier, nil,
	)

	res := r.Run(context.Background())

	require.True(t, res.Failed())
	assert.Equal(t, domain.StageFetching, res.Stage)
	assert.Equal(t, domain.KindNetwork, res.Kind)
	assert.Equal(t, 3, res.Kind.ExitCode())
	assert.Empty(t, store.saved, "seen store must not be touched on fetch failure")
	assert.Empty(t, notifier.calls)
}

func TestRunScenarioDNotifyFailure(t *testing.T) {
	// Notify-then-record: a failed send keeps job-3 out of the persisted
	// set so the next run announces it again.
	store := &memStore{set: domain.NewSeenSet()}
	notifier := &fakeNotifier{err: errors.New("notify error: 535 bad credentials")}
	archive := &fakeArchive{}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{records: []domain.JobRecord{job("job-3")}},
		store, notifier, archive,
	)

	res := r.Run(context.Background())

	require.True(t, res.Failed())
	assert.Equal(t, domain.KindNotify, res.Kind)
	assert.Equal(t, 5, res.Kind.ExitCode())

	require.Len(t, store.saved, 1, "store is still saved after a notify failure")
	assert.False(t, store.set.Has("job-3"), "unnotified id must not be recorded as seen")
	assert.Empty(t, archive.inserted, "unannounced jobs are not archived")
}

func TestRunIdempotence(t *testing.T) {
	store := &memStore{set: domain.NewSeenSet()}
	notifier := &fakeNotifier{}
	parser := &fakeParser{records: []domain.JobRecord{job("job-1"), job("job-2")}}
	r := newRunner(&fakeFetcher{body: []byte("<html/>")}, parser, store, notifier, nil)

	first := r.Run(context.Background())
	require.False(t, first.Failed())
	assert.Len(t, first.NewJobs, 2)

	second := r.Run(context.Background())
	require.False(t, second.Failed())
	assert.Empty(t, second.NewJobs, "second run with unchanged source must find nothing new")
	assert.Len(t, notifier.calls, 1, "no second notification")
}

func TestRunKeywordFilter(t *testing.T) {
	store := &memStore{set: domain.NewSeenSet()}
	notifier := &fakeNotifier{}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{records: []domain.JobRecord{
			{ID: "a", Title: "Go Engineer"},
			{ID: "b", Title: "Pastry Chef"},
		}},
		store, notifier, nil,
	)
	r.Keywords = []string{"engineer"}

	res := r.Run(context.Background())

	require.False(t, res.Failed())
	require.Len(t, res.NewJobs, 1)
	assert.Equal(t, "a", res.NewJobs[0].ID)
	// Filtered-out jobs stay unseen so a keyword change can surface them.
	assert.False(t, store.set.Has("b"))
}

func TestRunDryRun(t *testing.T) {
	store := &memStore{set: domain.NewSeenSet()}
	notifier := &fakeNotifier{}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{records: []domain.JobRecord{job("job-1")}},
		store, notifier, nil,
	)
	r.DryRun = true

	res := r.Run(context.Background())

	require.False(t, res.Failed())
	assert.Equal(t, domain.StageDone, res.Stage)
	assert.Len(t, res.NewJobs, 1)
	assert.Empty(t, notifier.calls)
	assert.Empty(t, store.saved)
}

func TestRunSaveFailureIsFatal(t *testing.T) {
	store := &memStore{set: domain.NewSeenSet(), saveErr: errors.New("disk full")}
	notifier := &fakeNotifier{}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{records: []domain.JobRecord{job("job-1")}},
		store, notifier, nil,
	)

	res := r.Run(context.Background())

	require.True(t, res.Failed())
	assert.Equal(t, domain.StagePersisting, res.Stage)
	assert.Equal(t, domain.KindIO, res.Kind)
	assert.Equal(t, 6, res.Kind.ExitCode())
}

func TestRunParseErrorIsFatal(t *testing.T) {
	store := &memStore{set: domain.NewSeenSet()}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{err: errors.New("parse error: read document")},
		store, &fakeNotifier{}, nil,
	)

	res := r.Run(context.Background())

	require.True(t, res.Failed())
	assert.Equal(t, domain.StageParsing, res.Stage)
	assert.Equal(t, domain.KindParse, res.Kind)
	assert.Empty(t, store.saved)
}

func TestRunArchiveFailureIsWarning(t *testing.T) {
	store := &memStore{set: domain.NewSeenSet()}
	notifier := &fakeNotifier{}
	archive := &fakeArchive{err: errors.New("database locked")}
	r := newRunner(
		&fakeFetcher{body: []byte("<html/>")},
		&fakeParser{records: []domain.JobRecord{job("job-1")}},
		store, notifier, archive,
	)

	res := r.Run(context.Background())

	require.False(t, res.Failed(), "archive trouble must not fail the run")
	assert.Equal(t, domain.StageDone, res.Stage)
	assert.NotEmpty(t, res.Warnings)
	assert.True(t, store.set.Has("job-1"))
}
