package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/freshveg/basket-agent/internal/storage"
	"github.com/freshveg/basket-agent/pkg/logger"
)

const (
	guestCartKey     = "guest:cart"
	guestWishlistKey = "guest:wishlist"
)

// GuestStore persists the guest cart and wishlist snapshots in the
// on-device store. Saves always carry the full current snapshot, so a
// save that is dispatched later must never be finished off by an
// earlier, slower one: every save is stamped with a sequence at call
// time and a stale write is silently skipped.
type GuestStore interface {
	SaveCart(ctx context.Context, items []model.CartItem) error
	LoadCart(ctx context.Context) ([]model.CartItem, error)
	ClearCart(ctx context.Context) error
	SaveWishlist(ctx context.Context, items []model.WishlistItem) error
	LoadWishlist(ctx context.Context) ([]model.WishlistItem, error)
	ClearWishlist(ctx context.Context) error
}

type guestStore struct {
	kv storage.KV

	mu      sync.Mutex
	nextSeq map[string]uint64 // next sequence to hand out, per key
	written map[string]uint64 // highest sequence written, per key
}

func NewGuestStore(kv storage.KV) GuestStore {
	return &guestStore{
		kv:      kv,
		nextSeq: make(map[string]uint64),
		written: make(map[string]uint64),
	}
}

type snapshotEnvelope struct {
	Seq   uint64          `json:"seq"`
	Items json.RawMessage `json:"items"`
}

func (s *guestStore) SaveCart(ctx context.Context, items []model.CartItem) error {
	return s.save(ctx, guestCartKey, items)
}

func (s *guestStore) LoadCart(ctx context.Context) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := s.load(ctx, guestCartKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *guestStore) ClearCart(ctx context.Context) error {
	return s.clear(ctx, guestCartKey)
}

func (s *guestStore) SaveWishlist(ctx context.Context, items []model.WishlistItem) error {
	return s.save(ctx, guestWishlistKey, items)
}

func (s *guestStore) LoadWishlist(ctx context.Context) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	if err := s.load(ctx, guestWishlistKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *guestStore) ClearWishlist(ctx context.Context) error {
	return s.clear(ctx, guestWishlistKey)
}

func (s *guestStore) save(ctx context.Context, key string, items interface{}) error {
	// Sequence is taken at dispatch time: last dispatched save wins,
	// regardless of which write completes first.
	s.mu.Lock()
	s.nextSeq[key]++
	seq := s.nextSeq[key]
	s.mu.Unlock()

	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode guest snapshot: %w", err)
	}
	envelope, err := json.Marshal(snapshotEnvelope{Seq: seq, Items: encoded})
	if err != nil {
		return fmt.Errorf("failed to encode guest envelope: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.written[key] {
		logger.Debug("Skipping stale guest snapshot write", map[string]interface{}{
			"key":     key,
			"seq":     seq,
			"written": s.written[key],
		})
		return nil
	}

	if err := s.kv.Set(ctx, key, envelope); err != nil {
		logger.Error("Failed to persist guest snapshot", err, map[string]interface{}{
			"key": key,
			"seq": seq,
		})
		return err
	}
	s.written[key] = seq

	logger.Debug("Guest snapshot persisted", map[string]interface{}{
		"key": key,
		"seq": seq,
	})
	return nil
}

func (s *guestStore) load(ctx context.Context, key string, out interface{}) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		// No prior save means an empty collection, never an error.
		return nil
	}
	if err != nil {
		logger.Error("Failed to load guest snapshot", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	var envelope snapshotEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.Error("Failed to decode guest envelope", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	if len(envelope.Items) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Items, out); err != nil {
		logger.Error("Failed to decode guest snapshot", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

func (s *guestStore) clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, key); err != nil {
		logger.Error("Failed to clear guest snapshot", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	// A clear supersedes every save dispatched before it.
	s.written[key] = s.nextSeq[key]

	logger.Info("Guest snapshot cleared", map[string]interface{}{
		"key": key,
	})
	return nil
}
