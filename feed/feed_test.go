package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/backend/backend"
)

// fakeCollection hands out subscriptions the test publishes into directly.
type fakeCollection struct {
	mu       sync.Mutex
	subs     map[string]*backend.Subscription
	canceled map[string]bool
	subErr   error
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{
		subs:     make(map[string]*backend.Subscription),
		canceled: make(map[string]bool),
	}
}

func (f *fakeCollection) Append(ctx context.Context, path string, record map[string]interface{}) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeCollection) Remove(ctx context.Context, path string) error {
	return errors.New("not implemented")
}

func (f *fakeCollection) Subscribe(path string) (*backend.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	sub := backend.NewSubscription(func() {
		f.mu.Lock()
		f.canceled[path] = true
		f.mu.Unlock()
	})
	f.mu.Lock()
	f.subs[path] = sub
	f.mu.Unlock()
	return sub, nil
}

func (f *fakeCollection) wasCanceled(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled[path]
}

func (f *fakeCollection) push(path string, snap backend.Snapshot) {
	f.mu.Lock()
	sub := f.subs[path]
	f.mu.Unlock()
	sub.Publish(snap)
}

func (f *fakeCollection) pushErr(path string, err error) {
	f.mu.Lock()
	sub := f.subs[path]
	f.mu.Unlock()
	sub.PublishErr(err)
}

func record(amount interface{}, date int64) map[string]interface{} {
	return map[string]interface{}{
		"description": "x",
		"amount":      amount,
		"date":        date,
		"createdAt":   date,
		"userId":      "user-1",
	}
}

func waitSynced(t *testing.T, f *Feed) Status {
	t.Helper()
	var st Status
	require.Eventually(t, func() bool {
		st = f.Status()
		return !st.Loading
	}, time.Second, 5*time.Millisecond)
	return st
}

func TestFeedLoadingUntilFirstSnapshot(t *testing.T) {
	coll := newFakeCollection()
	f := New(coll, "user-1")
	require.NoError(t, f.Start())

	st := f.Status()
	assert.True(t, st.Loading)
	assert.Empty(t, st.Expenses)
	assert.Nil(t, st.LastSync)
	assert.Equal(t, Subscribing, f.State())

	coll.push(backend.ExpensesPath("user-1"), backend.Snapshot{
		"a": record(float64(10), 1000),
	})

	st = waitSynced(t, f)
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, 10.0, st.Expenses[0].Amount)
	assert.NotNil(t, st.LastSync)
	assert.Equal(t, Synced, f.State())
}

func TestFeedSortsByDateDescending(t *testing.T) {
	coll := newFakeCollection()
	f := New(coll, "user-1")
	require.NoError(t, f.Start())

	coll.push(backend.ExpensesPath("user-1"), backend.Snapshot{
		"a": record(float64(1), 1000),
		"b": record(float64(2), 3000),
		"c": record(float64(3), 2000),
	})

	st := waitSynced(t, f)
	require.Len(t, st.Expenses, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{
		st.Expenses[0].ID, st.Expenses[1].ID, st.Expenses[2].ID,
	})
	for i := 1; i < len(st.Expenses); i++ {
		assert.False(t, st.Expenses[i-1].Date.Before(st.Expenses[i].Date))
	}
}

func TestFeedNormalizesMalformedEntries(t *testing.T) {
	coll := newFakeCollection()
	f := New(coll, "user-1")
	require.NoError(t, f.Start())

	coll.push(backend.ExpensesPath("user-1"), backend.Snapshot{
		"a": map[string]interface{}{
			"description": "no date",
			"amount":      "7.5",
			"createdAt":   float64(5000),
		},
	})

	st := waitSynced(t, f)
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, 7.5, st.Expenses[0].Amount)
	assert.Equal(t, time.UnixMilli(5000), st.Expenses[0].Date)
}

func TestFeedProcessingErrorKeepsLastList(t *testing.T) {
	coll := newFakeCollection()
	f := New(coll, "user-1")
	require.NoError(t, f.Start())

	path := backend.ExpensesPath("user-1")
	coll.push(path, backend.Snapshot{"a": record(float64(1), 1000)})
	waitSynced(t, f)

	coll.push(path, backend.Snapshot{"b": "not an object"})
	require.Eventually(t, func() bool {
		return f.Status().Error != ""
	}, time.Second, 5*time.Millisecond)

	st := f.Status()
	assert.Equal(t, "Failed to process expense data", st.Error)
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, "a", st.Expenses[0].ID)
}

func TestFeedBackendErrorClassified(t *testing.T) {
	coll := newFakeCollection()
	f := New(coll, "user-1")
	require.NoError(t, f.Start())

	path := backend.ExpensesPath("user-1")
	coll.push(path, backend.Snapshot{"a": record(float64(1), 1000)})
	waitSynced(t, f)

	coll.pushErr(path, errors.New("permission denied at /users/user-1"))
	require.Eventually(t, func() bool {
		return f.Status().Error != ""
	}, time.Second, 5*time.Millisecond)

	st := f.Status()
	assert.Equal(t, "You don't have permission to access this data", st.Error)
	assert.False(t, st.Loading)
	// list stays at its last known value
	require.Len(t, st.Expenses, 1)

	// a later snapshot clears the error
	coll.push(path, backend.Snapshot{"a": record(float64(1), 1000)})
	require.Eventually(t, func() bool {
		return f.Status().Error == ""
	}, time.Second, 5*time.Millisecond)
}

func TestFeedStop(t *testing.T) {
	coll := newFakeCollection()
	f := New(coll, "user-1")
	require.NoError(t, f.Start())

	path := backend.ExpensesPath("user-1")
	coll.push(path, backend.Snapshot{"a": record(float64(1), 1000)})
	waitSynced(t, f)

	f.Stop()
	assert.Equal(t, Unsubscribed, f.State())
	assert.True(t, coll.wasCanceled(path))

	st := f.Status()
	assert.Empty(t, st.Expenses)
	assert.False(t, st.Loading)

	// snapshots after teardown are never applied
	coll.push(path, backend.Snapshot{"b": record(float64(2), 2000)})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.Status().Expenses)
}

func TestFeedStopKeepsSurfacedError(t *testing.T) {
	coll := newFakeCollection()
	f := New(coll, "user-1")
	require.NoError(t, f.Start())

	path := backend.ExpensesPath("user-1")
	coll.pushErr(path, errors.New("service unavailable"))
	require.Eventually(t, func() bool {
		return f.Status().Error != ""
	}, time.Second, 5*time.Millisecond)

	f.Stop()
	assert.NotEmpty(t, f.Status().Error)
}

func TestFeedStartFailure(t *testing.T) {
	coll := newFakeCollection()
	coll.subErr = errors.New("network is down")

	f := New(coll, "user-1")
	err := f.Start()
	require.Error(t, err)

	st := f.Status()
	assert.False(t, st.Loading)
	assert.NotEmpty(t, st.Error)
	assert.Equal(t, Unsubscribed, f.State())
}

func TestManager(t *testing.T) {
	coll := newFakeCollection()
	m := NewManager(coll)

	f1 := m.Feed("user-1")
	assert.Same(t, f1, m.Feed("user-1"))

	f2 := m.Feed("user-2")
	assert.NotSame(t, f1, f2)

	m.Drop("user-1")
	assert.Equal(t, Unsubscribed, f1.State())
	assert.Equal(t, Subscribing, f2.State())

	// a dropped user gets a fresh feed on next use
	assert.NotSame(t, f1, m.Feed("user-1"))

	m.Close()
	assert.Equal(t, Unsubscribed, f2.State())
}
