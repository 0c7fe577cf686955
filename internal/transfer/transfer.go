// Package transfer fakes a funds transfer: it waits a fixed delay and
// hands back a random placeholder transaction hash.
package transfer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/worker"
)

var (
	ErrNotFound      = errors.New("transfer not found")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrNoRecipient   = errors.New("recipient is required")
	ErrBusy          = errors.New("too many transfers in flight")
)

// Simulate waits for delay and returns a hash of the form "0x" followed by
// 64 hex digits. Cancelling ctx abandons the wait.
func Simulate(ctx context.Context, delay time.Duration) (string, error) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	return NewHash()
}

func NewHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating hash: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

type Service struct {
	delay time.Duration
	pool  *worker.Pool[string]

	mu        sync.RWMutex
	transfers map[string]*models.Transfer
}

func NewService(delay time.Duration, workers, queue int) *Service {
	s := &Service{
		delay:     delay,
		transfers: make(map[string]*models.Transfer),
	}
	s.pool = worker.NewPool("transfer", workers, queue, s.process)
	return s
}

func (s *Service) Start(ctx context.Context) {
	s.pool.Start(ctx)
}

func (s *Service) Stop() {
	s.pool.Stop()
	slog.Info("transfer service stopped")
}

// Submit records a pending transfer and queues its simulation.
func (s *Service) Submit(recipient string, amount decimal.Decimal) (models.Transfer, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return models.Transfer{}, ErrNoRecipient
	}
	if !amount.IsPositive() {
		return models.Transfer{}, ErrInvalidAmount
	}

	t := &models.Transfer{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Amount:    amount,
		State:     models.TransferPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.transfers[t.ID] = t
	s.mu.Unlock()

	if err := s.pool.TrySubmit(t.ID); err != nil {
		s.mu.Lock()
		delete(s.transfers, t.ID)
		s.mu.Unlock()
		return models.Transfer{}, ErrBusy
	}

	slog.Info("transfer queued", "id", t.ID, "recipient", recipient, "amount", amount.String())
	return *t, nil
}

func (s *Service) Get(id string) (models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfers[id]
	if !ok {
		return models.Transfer{}, ErrNotFound
	}
	return *t, nil
}

func (s *Service) process(ctx context.Context, id string) error {
	hash, err := Simulate(ctx, s.delay)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transfers[id]
	if !ok {
		return fmt.Errorf("transfer %s: %w", id, ErrNotFound)
	}
	t.CompletedAt = &now
	if err != nil {
		t.State = models.TransferFailed
		t.Error = err.Error()
		return fmt.Errorf("transfer %s: %w", id, err)
	}
	t.State = models.TransferCompleted
	t.Hash = hash
	slog.Info("transfer completed", "id", id, "hash", hash)
	return nil
}
