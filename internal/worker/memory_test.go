package worker

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_Disabled(t *testing.T) {
	ml := NewMemoryLimiter(0)
	if ml.IsEnabled() {
		t.Error("IsEnabled() = true, want false")
	}
	release, err := ml.Acquire(context.Background(), 1<<30)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
}

func TestMemoryLimiter_AcquireRelease(t *testing.T) {
	ml := NewMemoryLimiter(1)
	if ml.MaxMemory() != 1024*1024 {
		t.Errorf("MaxMemory() = %d", ml.MaxMemory())
	}

	release, err := ml.Acquire(context.Background(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	if got := ml.CurrentUsage(); got != Estimate(1000) {
		t.Errorf("CurrentUsage() = %d, want %d", got, Estimate(1000))
	}
	release()
	release()
	if got := ml.CurrentUsage(); got != 0 {
		t.Errorf("CurrentUsage() after release = %d, want 0", got)
	}
}

func TestMemoryLimiter_BlocksUntilContextDone(t *testing.T) {
	ml := NewMemoryLimiter(1)

	// первый резерв больше лимита допускается, пока других нет
	release, err := ml.Acquire(context.Background(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	if _, err := ml.Acquire(ctx, 10); err == nil {
		t.Error("Acquire() should fail when limit is exhausted")
	}
}

func TestEstimate(t *testing.T) {
	if Estimate(0) != 0 || Estimate(-5) != 0 {
		t.Error("Estimate() of non-positive should be 0")
	}
	if Estimate(10) != 120 {
		t.Errorf("Estimate(10) = %d, want 120", Estimate(10))
	}
}
