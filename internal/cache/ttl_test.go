package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestGetOrRefresh_CachesUntilExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[int](WithClock(clock.Now))
	calls := 0
	refresh := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	v, _ := c.GetOrRefresh(ctx, "k", time.Minute, refresh)
	if v != 1 {
		t.Fatalf("first value = %d, want 1", v)
	}
	clock.Advance(30 * time.Second)
	v, _ = c.GetOrRefresh(ctx, "k", time.Minute, refresh)
	if v != 1 || calls != 1 {
		t.Fatalf("cached value = %d (calls %d), want 1 (1)", v, calls)
	}
	clock.Advance(31 * time.Second)
	v, _ = c.GetOrRefresh(ctx, "k", time.Minute, refresh)
	if v != 2 || calls != 2 {
		t.Fatalf("refreshed value = %d (calls %d), want 2 (2)", v, calls)
	}
}

func TestGetOrRefresh_ErrorsNotCached(t *testing.T) {
	c := New[string]()
	boom := errors.New("boom")
	_, err := c.GetOrRefresh(context.Background(), "k", time.Minute, func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("error result was cached")
	}
	v, err := c.GetOrRefresh(context.Background(), "k", time.Minute, func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Errorf("second call = %q, %v", v, err)
	}
}

func TestGetOrRefresh_CollapsesConcurrentCalls(t *testing.T) {
	c := New[int]()
	var calls atomic.Int32
	release := make(chan struct{})
	refresh := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrRefresh(context.Background(), "k", time.Minute, refresh)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("refresh calls = %d, want 1", n)
	}
	for i, r := range results {
		if r != 42 {
			t.Errorf("result %d = %d, want 42", i, r)
		}
	}
}

func TestPurge(t *testing.T) {
	c := New[int]()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Purge()
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived purge")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
}

func TestSet_SweepsExpiredEntries(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[int](WithClock(clock.Now))
	for i := range 1000 {
		c.Set(fmt.Sprintf("q%d", i), i, time.Minute)
	}
	if c.Len() != 1000 {
		t.Fatalf("len = %d, want 1000", c.Len())
	}

	clock.Advance(time.Hour)
	c.Set("fresh", 1, time.Minute)
	if c.Len() != 1 {
		t.Fatalf("len after expiry = %d, want 1", c.Len())
	}
	if v, ok := c.Get("fresh"); !ok || v != 1 {
		t.Fatalf("fresh = %d, %v", v, ok)
	}
}

func TestGet_RemovesExpiredEntry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := New[string](WithClock(clock.Now))
	c.Set("k", "v", time.Second)
	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d, want 0", c.Len())
	}
}
