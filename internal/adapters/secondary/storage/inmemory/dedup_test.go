package inmemory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSetIfAbsent_ConcurrentSingleWinner(t *testing.T) {
	store := NewDedupStore()
	ctx := context.Background()

	const workers = 32
	var winners atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acquired, err := store.SetIfAbsent(ctx, "notify:p1:created", time.Hour)
			if err != nil {
				t.Errorf("SetIfAbsent failed: %v", err)
				return
			}
			if acquired {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", got)
	}
}

func TestRelease_AllowsReacquire(t *testing.T) {
	store := NewDedupStore()
	ctx := context.Background()

	acquired, err := store.SetIfAbsent(ctx, "key", time.Hour)
	if err != nil || !acquired {
		t.Fatalf("first SetIfAbsent = (%v, %v)", acquired, err)
	}

	acquired, err = store.SetIfAbsent(ctx, "key", time.Hour)
	if err != nil || acquired {
		t.Fatalf("second SetIfAbsent must not acquire, got (%v, %v)", acquired, err)
	}

	if err := store.Release(ctx, "key"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	acquired, err = store.SetIfAbsent(ctx, "key", time.Hour)
	if err != nil || !acquired {
		t.Fatalf("SetIfAbsent after release = (%v, %v)", acquired, err)
	}
}

func TestSetIfAbsent_ExpiredKeyIsReacquirable(t *testing.T) {
	store := NewDedupStore()
	ctx := context.Background()

	if acquired, _ := store.SetIfAbsent(ctx, "key", time.Nanosecond); !acquired {
		t.Fatal("first acquire failed")
	}

	time.Sleep(5 * time.Millisecond)

	acquired, err := store.SetIfAbsent(ctx, "key", time.Hour)
	if err != nil || !acquired {
		t.Fatalf("expired key must be reacquirable, got (%v, %v)", acquired, err)
	}
}

func TestSetIfAbsent_ZeroTTLNeverExpires(t *testing.T) {
	store := NewDedupStore()
	ctx := context.Background()

	if acquired, _ := store.SetIfAbsent(ctx, "key", 0); !acquired {
		t.Fatal("first acquire failed")
	}
	if acquired, _ := store.SetIfAbsent(ctx, "key", 0); acquired {
		t.Fatal("key without TTL must not expire")
	}
}

func TestSetIfAbsent_IndependentKeys(t *testing.T) {
	store := NewDedupStore()
	ctx := context.Background()

	for _, key := range []string{"notify:p1:created", "notify:p1:completed", "notify:p2:created"} {
		if acquired, _ := store.SetIfAbsent(ctx, key, time.Hour); !acquired {
			t.Errorf("key %q must be acquirable", key)
		}
	}
}
