// Package feed maintains live, per-user views of the expense collection by
// consuming full snapshots pushed from the collection backend.
package feed

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"pennywise/backend/backend"
	"pennywise/backend/models"
)

// State is the subscription lifecycle of a feed.
type State int

const (
	Unsubscribed State = iota
	Subscribing
	Synced
)

func (s State) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case Subscribing:
		return "subscribing"
	case Synced:
		return "synced"
	}
	return "unknown"
}

// Feed holds a continuously updated, date-descending list of one user's
// expenses. Reads never block writes: consumers take a copy via Status.
type Feed struct {
	coll backend.Collection
	path string

	mu       sync.Mutex
	state    State
	expenses []models.Expense
	loading  bool
	errMsg   string
	lastSync time.Time
	sub      *backend.Subscription
	quit     chan struct{}
}

// Status is the read-only view handed to the presentation layer.
type Status struct {
	Expenses []models.Expense `json:"expenses"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	LastSync *time.Time       `json:"lastSync,omitempty"`
}

func New(coll backend.Collection, userID string) *Feed {
	return &Feed{
		coll: coll,
		path: backend.ExpensesPath(userID),
	}
}

// Start opens the standing subscription. The feed reports loading until the
// first snapshot or error arrives.
func (f *Feed) Start() error {
	f.mu.Lock()
	if f.state != Unsubscribed {
		f.mu.Unlock()
		return nil
	}
	f.state = Subscribing
	f.loading = true
	f.errMsg = ""
	f.mu.Unlock()

	sub, err := f.coll.Subscribe(f.path)
	if err != nil {
		app := models.Classify(err)
		f.mu.Lock()
		f.state = Unsubscribed
		f.loading = false
		f.errMsg = app.Message
		f.mu.Unlock()
		return app
	}

	quit := make(chan struct{})
	f.mu.Lock()
	f.sub = sub
	f.quit = quit
	f.mu.Unlock()

	go f.run(sub, quit)
	return nil
}

// Stop tears the subscription down: the list empties, loading clears, and no
// further updates are applied. A previously surfaced error stays visible.
func (f *Feed) Stop() {
	f.mu.Lock()
	if f.state == Unsubscribed {
		f.mu.Unlock()
		return
	}
	sub, quit := f.sub, f.quit
	f.state = Unsubscribed
	f.expenses = nil
	f.loading = false
	f.sub = nil
	f.quit = nil
	f.mu.Unlock()

	sub.Cancel()
	close(quit)
}

// Status returns a copy of the feed's current view.
func (f *Feed) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := Status{
		Expenses: make([]models.Expense, len(f.expenses)),
		Loading:  f.loading,
		Error:    f.errMsg,
	}
	copy(out.Expenses, f.expenses)
	if !f.lastSync.IsZero() {
		t := f.lastSync
		out.LastSync = &t
	}
	return out
}

// State reports the current lifecycle state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Feed) run(sub *backend.Subscription, quit chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case snap := <-sub.Snapshots():
			f.applySnapshot(snap)
		case err := <-sub.Errors():
			f.applyError(err)
		}
	}
}

func (f *Feed) applySnapshot(snap backend.Snapshot) {
	expenses, err := decodeSnapshot(snap, time.Now())

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Unsubscribed {
		return
	}
	if err != nil {
		f.errMsg = models.NewProcessingError(err).Message
		f.loading = false
		return
	}
	f.expenses = expenses
	f.state = Synced
	f.loading = false
	f.errMsg = ""
	f.lastSync = time.Now()
}

func (f *Feed) applyError(err error) {
	app := models.Classify(err)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Unsubscribed {
		return
	}
	f.errMsg = app.Message
	f.loading = false
}

// decodeSnapshot turns a raw collection snapshot into normalized expenses
// sorted by date descending. Ids are walked in lexicographic order so ties
// stay deterministic for a given snapshot. An entry that is not an object
// fails the whole snapshot.
func decodeSnapshot(snap backend.Snapshot, now time.Time) ([]models.Expense, error) {
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	expenses := make([]models.Expense, 0, len(ids))
	for _, id := range ids {
		raw, ok := snap[id].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("entry %s is not an object", id)
		}
		expenses = append(expenses, models.Normalize(id, raw, now))
	}

	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
	return expenses, nil
}
