package backend

import (
	"context"
	"strings"
	"sync"
)

// Snapshot is the full contents of a collection path keyed by record id.
// Values are left undecoded; normalization belongs to the consumer.
type Snapshot map[string]interface{}

// Collection is the hosted collection the application persists through:
// append-style writes, removals by path, and full-snapshot change
// subscriptions. Implementations guarantee that every subscriber observes the
// latest full collection state at least once after each mutation.
type Collection interface {
	Append(ctx context.Context, path string, record map[string]interface{}) (string, error)
	Remove(ctx context.Context, path string) error
	Subscribe(path string) (*Subscription, error)
}

// ExpensesPath is the collection path holding userID's expenses.
func ExpensesPath(userID string) string {
	return "users/" + userID + "/expenses"
}

// ExpensePath addresses a single expense record.
func ExpensePath(userID, id string) string {
	return ExpensesPath(userID) + "/" + id
}

// parentPath strips the trailing segment from a record path.
func parentPath(path string) string {
	if i := strings.LastIndex(path, "/"); i > 0 {
		return path[:i]
	}
	return path
}

// Subscription is a standing watch on one collection path. Snapshots carries
// full collection states, Errors carries backend failures; both are
// latest-wins, a slow consumer only ever misses intermediate states. Cancel
// stops all future deliveries.
type Subscription struct {
	snaps  chan Snapshot
	errs   chan error
	cancel func()
	once   sync.Once
}

// NewSubscription creates a subscription handle for Collection
// implementations outside this package. cancel runs once when the consumer
// calls Cancel.
func NewSubscription(cancel func()) *Subscription {
	return newSubscription(cancel)
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{
		snaps:  make(chan Snapshot, 1),
		errs:   make(chan error, 1),
		cancel: cancel,
	}
}

// Publish delivers a snapshot to the consumer, latest-wins. Only Collection
// implementations call this.
func (s *Subscription) Publish(snap Snapshot) {
	s.deliver(snap)
}

// PublishErr delivers a backend failure to the consumer.
func (s *Subscription) PublishErr(err error) {
	s.deliverErr(err)
}

func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.snaps
}

func (s *Subscription) Errors() <-chan error {
	return s.errs
}

// Cancel tears the subscription down. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// deliver replaces any undrained snapshot so the consumer always observes the
// most recent state.
func (s *Subscription) deliver(snap Snapshot) {
	for {
		select {
		case s.snaps <- snap:
			return
		default:
			select {
			case <-s.snaps:
			default:
			}
		}
	}
}

func (s *Subscription) deliverErr(err error) {
	for {
		select {
		case s.errs <- err:
			return
		default:
			select {
			case <-s.errs:
			default:
			}
		}
	}
}
