package transfer

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/goleak"

	"github.com/mr1hm/go-crisis-response/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var hashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

func TestSimulate_WaitsThenReturnsHash(t *testing.T) {
	start := time.Now()
	hash, err := Simulate(context.Background(), 30*time.Millisecond)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("returned after %v, expected at least the delay", elapsed)
	}
	if !hashPattern.MatchString(hash) {
		t.Errorf("unexpected hash format: %s", hash)
	}
}

func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Simulate(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewHash_Unique(t *testing.T) {
	a, _ := NewHash()
	b, _ := NewHash()
	if a == b {
		t.Error("expected distinct hashes")
	}
}

func TestService_SubmitCompletes(t *testing.T) {
	svc := NewService(10*time.Millisecond, 2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	defer func() {
		cancel()
		svc.Stop()
	}()

	tr, err := svc.Submit("Bihar relief fund", decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if tr.State != models.TransferPending {
		t.Errorf("expected pending, got %s", tr.State)
	}

	deadline := time.After(2 * time.Second)
	for {
		got, err := svc.Get(tr.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.State == models.TransferCompleted {
			if !hashPattern.MatchString(got.Hash) {
				t.Errorf("unexpected hash %s", got.Hash)
			}
			if got.CompletedAt == nil {
				t.Error("expected completion time")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("transfer did not complete, state %s", got.State)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestService_SubmitValidation(t *testing.T) {
	svc := NewService(time.Millisecond, 1, 1)

	if _, err := svc.Submit("  ", decimal.NewFromInt(1)); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("expected ErrNoRecipient, got %v", err)
	}
	if _, err := svc.Submit("fund", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_FailsOnShutdown(t *testing.T) {
	svc := NewService(time.Hour, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)

	tr, err := svc.Submit("fund", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	cancel()
	svc.Stop()

	got, _ := svc.Get(tr.ID)
	if got.State != models.TransferFailed {
		t.Errorf("expected failed after cancel, got %s", got.State)
	}
}
