package backend

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

const defaultPollInterval = 15 * time.Second

// FirebaseStore is the hosted collection: the Firebase Realtime Database.
// The Admin SDK has no change-stream API, so Subscribe fetches the collection
// once, re-fetches immediately after each local mutation, and polls on an
// interval to observe writes from other clients. That satisfies the delivery
// guarantee of Collection for everything this process does.
type FirebaseStore struct {
	client   *db.Client
	interval time.Duration

	mu    sync.Mutex
	kicks map[string][]chan struct{}
}

// FirebaseConfig configures the Realtime Database client. Credentials come
// from ServiceAccountJSON when present, otherwise application default
// credentials are used.
type FirebaseConfig struct {
	DatabaseURL        string
	ProjectID          string
	ServiceAccountJSON []byte
	PollInterval       time.Duration
}

func NewFirebaseStore(ctx context.Context, cfg FirebaseConfig) (*FirebaseStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("firebase database URL is required")
	}

	var opts []option.ClientOption
	if len(cfg.ServiceAccountJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.ServiceAccountJSON))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   cfg.ProjectID,
		DatabaseURL: cfg.DatabaseURL,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &FirebaseStore{
		client:   client,
		interval: interval,
		kicks:    make(map[string][]chan struct{}),
	}, nil
}

func (f *FirebaseStore) Append(ctx context.Context, path string, record map[string]interface{}) (string, error) {
	ref, err := f.client.NewRef(path).Push(ctx, record)
	if err != nil {
		return "", err
	}
	f.kick(path)
	return ref.Key, nil
}

// Remove deletes the record addressed by path. The Realtime Database treats
// deleting an absent child as success, so this is idempotent for callers.
func (f *FirebaseStore) Remove(ctx context.Context, path string) error {
	if err := f.client.NewRef(path).Delete(ctx); err != nil {
		return err
	}
	f.kick(parentPath(path))
	return nil
}

func (f *FirebaseStore) Subscribe(path string) (*Subscription, error) {
	stop := make(chan struct{})
	sub := newSubscription(func() { close(stop) })

	wake := make(chan struct{}, 1)
	f.mu.Lock()
	f.kicks[path] = append(f.kicks[path], wake)
	f.mu.Unlock()

	go f.watch(path, sub, wake, stop)
	return sub, nil
}

func (f *FirebaseStore) watch(path string, sub *Subscription, wake, stop chan struct{}) {
	defer f.dropKick(path, wake)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.refresh(path, sub)
	for {
		select {
		case <-stop:
			return
		case <-wake:
		case <-ticker.C:
		}
		select {
		case <-stop:
			return
		default:
		}
		f.refresh(path, sub)
	}
}

func (f *FirebaseStore) refresh(path string, sub *Subscription) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var raw map[string]interface{}
	if err := f.client.NewRef(path).Get(ctx, &raw); err != nil {
		log.Printf("Failed to fetch %s: %v", path, err)
		sub.deliverErr(err)
		return
	}

	snap := Snapshot{}
	for id, record := range raw {
		snap[id] = record
	}
	sub.deliver(snap)
}

// kick wakes every watcher of path so the mutation is observed without
// waiting for the next poll.
func (f *FirebaseStore) kick(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, wake := range f.kicks[path] {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

func (f *FirebaseStore) dropKick(path string, wake chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chans := f.kicks[path]
	for i, c := range chans {
		if c == wake {
			f.kicks[path] = append(chans[:i], chans[i+1:]...)
			break
		}
	}
	if len(f.kicks[path]) == 0 {
		delete(f.kicks, path)
	}
}

// ServiceAccountJSON resolves Firebase credentials from the environment,
// trying the raw JSON variable first and the base64 variant second.
func ServiceAccountJSON() []byte {
	if raw := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); raw != "" {
		return []byte(raw)
	}
	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_BASE64"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			log.Printf("Error decoding base64 Firebase credentials: %v", err)
			return nil
		}
		return decoded
	}
	if raw := os.Getenv("FIREBASE_SERVICE_ACCOUNT"); raw != "" {
		return []byte(raw)
	}
	return nil
}
