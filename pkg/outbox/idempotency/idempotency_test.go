package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingStore struct {
	claimed  bool
	claimErr error
	keys     []string
	ttls     []time.Duration
	deleted  []string
}

func (s *recordingStore) Get(context.Context, string) (string, error) { return "", nil }

func (s *recordingStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	s.ttls = append(s.ttls, ttl)
	return s.claimed, s.claimErr
}

func (s *recordingStore) IdempotencyKey(scope, id string) string {
	return "sb:idempotency:" + scope + ":" + id
}

func (s *recordingStore) Del(_ context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

func mustManager(t *testing.T, store *recordingStore, ttl time.Duration) *Manager {
	t.Helper()
	manager, err := NewManager(store, ttl)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewManager(&recordingStore{}, -time.Second); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestCheckAndMarkProcessedFirstDelivery(t *testing.T) {
	store := &recordingStore{claimed: true}
	manager := mustManager(t, store, 24*time.Hour)

	eventID := uuid.New()
	already, err := manager.CheckAndMarkProcessed(context.Background(), "notifications-worker", eventID)
	if err != nil {
		t.Fatalf("CheckAndMarkProcessed: %v", err)
	}
	if already {
		t.Fatal("first delivery should not be marked as processed")
	}

	want := "sb:idempotency:evt:processed:notifications-worker:" + eventID.String()
	if len(store.keys) != 1 || store.keys[0] != want {
		t.Fatalf("unexpected keys: %v", store.keys)
	}
	if store.ttls[0] != 24*time.Hour {
		t.Fatalf("unexpected ttl: %v", store.ttls[0])
	}
}

func TestCheckAndMarkProcessedRedelivery(t *testing.T) {
	store := &recordingStore{claimed: false}
	manager := mustManager(t, store, 12*time.Hour)

	already, err := manager.CheckAndMarkProcessed(context.Background(), "notifications-worker", uuid.New())
	if err != nil {
		t.Fatalf("CheckAndMarkProcessed: %v", err)
	}
	if !already {
		t.Fatal("redelivery should be reported as already processed")
	}
}

func TestCheckAndMarkProcessedStoreFailure(t *testing.T) {
	store := &recordingStore{claimErr: errors.New("redis down")}
	manager := mustManager(t, store, time.Hour)

	if _, err := manager.CheckAndMarkProcessed(context.Background(), "notifications-worker", uuid.New()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestCheckAndMarkProcessedRejectsBadArguments(t *testing.T) {
	store := &recordingStore{claimed: true}
	manager := mustManager(t, store, time.Hour)

	if _, err := manager.CheckAndMarkProcessed(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("expected error for empty consumer")
	}
	if _, err := manager.CheckAndMarkProcessed(context.Background(), "worker", uuid.Nil); err == nil {
		t.Fatal("expected error for nil event id")
	}
	if len(store.keys) != 0 {
		t.Fatalf("store should not be touched on bad input, got %v", store.keys)
	}
}

func TestDeleteReleasesClaim(t *testing.T) {
	store := &recordingStore{}
	manager := mustManager(t, store, time.Hour)

	eventID := uuid.New()
	if err := manager.Delete(context.Background(), "notifications-worker", eventID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := "sb:idempotency:evt:processed:notifications-worker:" + eventID.String()
	if len(store.deleted) != 1 || store.deleted[0] != want {
		t.Fatalf("unexpected deleted keys: %v", store.deleted)
	}
}
