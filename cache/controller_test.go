// ABOUTME: Tests for the generic cache controller using a scripted fake repository
// ABOUTME: Covers load serialization, stale data on failure, mutations, and subscriptions
package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rapport/models"
)

type fakeRepo struct {
	fetchAll func(ctx context.Context) ([]models.Contact, error)
	fetchOne func(ctx context.Context, id string) (models.Contact, error)
	create   func(ctx context.Context, in models.ContactInput) (models.Contact, error)
	update   func(ctx context.Context, id string, p models.ContactPatch) (models.Contact, error)
	remove   func(ctx context.Context, id string) error
}

func (f *fakeRepo) FetchAll(ctx context.Context) ([]models.Contact, error) { return f.fetchAll(ctx) }
func (f *fakeRepo) FetchOne(ctx context.Context, id string) (models.Contact, error) {
	return f.fetchOne(ctx, id)
}
func (f *fakeRepo) Create(ctx context.Context, in models.ContactInput) (models.Contact, error) {
	return f.create(ctx, in)
}
func (f *fakeRepo) Update(ctx context.Context, id string, p models.ContactPatch) (models.Contact, error) {
	return f.update(ctx, id, p)
}
func (f *fakeRepo) Delete(ctx context.Context, id string) error { return f.remove(ctx, id) }

func contacts(names ...string) []models.Contact {
	out := make([]models.Contact, len(names))
	for i, n := range names {
		out[i] = models.Contact{ID: "id-" + n, Name: n}
	}
	return out
}

func names(items []models.Contact) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.Name
	}
	return out
}

func newLoaded(t *testing.T, repo *fakeRepo, initial ...string) *ContactController {
	t.Helper()
	repo.fetchAll = func(context.Context) ([]models.Contact, error) { return contacts(initial...), nil }
	c := NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repo, Options{})
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestLoadTransitionsThroughLoadingToReady(t *testing.T) {
	repo := &fakeRepo{fetchAll: func(context.Context) ([]models.Contact, error) {
		return contacts("Amy", "Bob"), nil
	}}
	c := NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repo, Options{})
	assert.Equal(t, Idle, c.Status())

	var seen []Status
	unsubscribe := c.Subscribe(func(s Snapshot[models.Contact]) { seen = append(seen, s.Status) })
	defer unsubscribe()

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []Status{Loading, Ready}, seen)
	assert.Equal(t, []string{"Amy", "Bob"}, names(c.Items()))
	assert.NoError(t, c.Err())
}

func TestFailedLoadPreservesStaleItems(t *testing.T) {
	repo := &fakeRepo{}
	c := newLoaded(t, repo, "X", "Y")

	cause := errors.New("offline")
	repo.fetchAll = func(context.Context) ([]models.Contact, error) { return nil, cause }

	err := c.Load(context.Background())
	require.ErrorIs(t, err, cause)
	assert.Equal(t, Failed, c.Status())
	assert.ErrorIs(t, c.Err(), cause)
	assert.Equal(t, []string{"X", "Y"}, names(c.Items()))

	// Retrying needs no reset.
	repo.fetchAll = func(context.Context) ([]models.Contact, error) { return contacts("Z"), nil }
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, Ready, c.Status())
	assert.NoError(t, c.Err())
	assert.Equal(t, []string{"Z"}, names(c.Items()))
}

func TestOverlappingLoadsKeepLastIssued(t *testing.T) {
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int32

	repo := &fakeRepo{fetchAll: func(context.Context) ([]models.Contact, error) {
		if calls.Add(1) == 1 {
			close(firstEntered)
			<-releaseFirst
			return contacts("old"), nil
		}
		return contacts("new"), nil
	}}
	c := NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repo, Options{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = c.Load(context.Background())
	}()
	<-firstEntered

	secondIssued := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(secondIssued)
		errs[1] = c.Load(context.Background())
	}()
	// Hold the first fetch until the second Load is queued behind it.
	<-secondIssued
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "second fetch must wait for the first")
	close(releaseFirst)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"new"}, names(c.Items()))
	assert.Equal(t, Ready, c.Status())
}

func TestAddAppendsWithoutResorting(t *testing.T) {
	repo := &fakeRepo{}
	c := newLoaded(t, repo, "Bob", "Zoe")
	repo.create = func(_ context.Context, in models.ContactInput) (models.Contact, error) {
		return models.Contact{ID: "id-" + in.Name, Name: in.Name}, nil
	}

	added, err := c.Add(context.Background(), models.ContactInput{Name: "Amy"})
	require.NoError(t, err)
	assert.Equal(t, "id-Amy", added.ID)
	assert.Equal(t, []string{"Bob", "Zoe", "Amy"}, names(c.Items()))
}

func TestFailedMutationsLeaveItemsAndStatus(t *testing.T) {
	repo := &fakeRepo{}
	c := newLoaded(t, repo, "Amy", "Bob")
	cause := errors.New("rejected")
	repo.create = func(context.Context, models.ContactInput) (models.Contact, error) { return models.Contact{}, cause }
	repo.update = func(context.Context, string, models.ContactPatch) (models.Contact, error) { return models.Contact{}, cause }
	repo.remove = func(context.Context, string) error { return cause }
	ctx := context.Background()

	_, err := c.Add(ctx, models.ContactInput{Name: "Cal"})
	assert.ErrorIs(t, err, cause)
	name := "Ann"
	_, err = c.Update(ctx, "id-Amy", models.ContactPatch{Name: &name})
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, c.Remove(ctx, "id-Bob"), cause)

	assert.Equal(t, []string{"Amy", "Bob"}, names(c.Items()))
	assert.Equal(t, Ready, c.Status())
	assert.NoError(t, c.Err())
}

func TestUpdateReplacesInPlace(t *testing.T) {
	repo := &fakeRepo{}
	c := newLoaded(t, repo, "Amy", "Bob", "Cal")
	repo.update = func(_ context.Context, id string, p models.ContactPatch) (models.Contact, error) {
		return models.Contact{ID: id, Name: *p.Name}, nil
	}

	name := "Bea"
	_, err := c.Update(context.Background(), "id-Bob", models.ContactPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amy", "Bea", "Cal"}, names(c.Items()))

	// An id that is not cached is not inserted.
	_, err = c.Update(context.Background(), "id-Nobody", models.ContactPatch{Name: &name})
	require.NoError(t, err)
	assert.Len(t, c.Items(), 3)
}

func TestRemoveFiltersItem(t *testing.T) {
	repo := &fakeRepo{}
	c := newLoaded(t, repo, "Amy", "Bob", "Cal")
	repo.remove = func(context.Context, string) error { return nil }

	require.NoError(t, c.Remove(context.Background(), "id-Bob"))
	assert.Equal(t, []string{"Amy", "Cal"}, names(c.Items()))
}

func TestGetAlwaysFetchesAndNeverInserts(t *testing.T) {
	repo := &fakeRepo{}
	c := newLoaded(t, repo, "Amy")
	var calls atomic.Int32
	repo.fetchOne = func(_ context.Context, id string) (models.Contact, error) {
		calls.Add(1)
		return models.Contact{ID: id, Name: "Fresh"}, nil
	}

	got, err := c.Get(context.Background(), "id-Amy")
	require.NoError(t, err)
	assert.Equal(t, "Fresh", got.Name)

	_, err = c.Get(context.Background(), "id-Other")
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"Amy"}, names(c.Items()))
}

func TestConcurrentGetsShareOneRequest(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	repo := &fakeRepo{fetchOne: func(_ context.Context, id string) (models.Contact, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return models.Contact{ID: id, Name: "Amy"}, nil
	}}
	c := NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repo, Options{})

	var wg sync.WaitGroup
	results := make([]models.Contact, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Get(context.Background(), "id-Amy")
	}()
	<-entered
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = c.Get(context.Background(), "id-Amy")
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Amy", results[0].Name)
	assert.Equal(t, "Amy", results[1].Name)
}

func TestGetCallerCancelDoesNotFailOthers(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fetchErr := make(chan error, 2)
	var calls atomic.Int32
	repo := &fakeRepo{fetchOne: func(ctx context.Context, id string) (models.Contact, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		fetchErr <- ctx.Err()
		if err := ctx.Err(); err != nil {
			return models.Contact{}, err
		}
		return models.Contact{ID: id, Name: "Amy"}, nil
	}}
	c := NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repo, Options{})

	leaving, cancel := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Get(leaving, "id-Amy")
		errA <- err
	}()
	<-entered

	var got models.Contact
	var errB error
	joined := make(chan struct{})
	doneB := make(chan struct{})
	go func() {
		defer close(doneB)
		close(joined)
		got, errB = c.Get(context.Background(), "id-Amy")
	}()
	<-joined
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	<-doneB
	require.NoError(t, errB)
	assert.Equal(t, "Amy", got.Name)
	assert.NoError(t, <-fetchErr, "shared fetch must not see the first caller's cancel")
}

func TestLateResponseAfterUnsubscribeIsIgnored(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	repo := &fakeRepo{fetchAll: func(context.Context) ([]models.Contact, error) {
		close(entered)
		<-release
		return contacts("Amy"), nil
	}}
	c := NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repo, Options{})

	var mu sync.Mutex
	var delivered []Status
	unsubscribe := c.Subscribe(func(s Snapshot[models.Contact]) {
		mu.Lock()
		delivered = append(delivered, s.Status)
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-entered
	unsubscribe()
	unsubscribe()
	close(release)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{Loading}, delivered)
	assert.Equal(t, Ready, c.Status())
}

func TestMetricsCountOutcomes(t *testing.T) {
	m := NewMetrics(nil)
	repo := &fakeRepo{fetchAll: func(context.Context) ([]models.Contact, error) { return contacts("Amy"), nil }}
	c := NewController[models.Contact, models.ContactInput, models.ContactPatch]("contact", repo, Options{Metrics: m})

	require.NoError(t, c.Load(context.Background()))
	repo.fetchAll = func(context.Context) ([]models.Contact, error) { return nil, errors.New("boom") }
	require.Error(t, c.Load(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("contact", "load", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("contact", "load", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight.WithLabelValues("contact")))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
}
