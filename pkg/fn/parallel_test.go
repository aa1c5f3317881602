package fn

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestParMapPreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	got := ParMap(in, 8, func(n int) int { return n * 2 })
	for i, v := range got {
		if v != i*2 {
			t.Fatalf("index %d: got %d", i, v)
		}
	}
}

func TestParMapBoundsConcurrency(t *testing.T) {
	var active, peak int32
	ParMap(make([]int, 50), 4, func(int) int {
		cur := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return 0
	})
	if peak > 4 {
		t.Fatalf("concurrency exceeded bound: %d", peak)
	}
}

func TestParMapEmpty(t *testing.T) {
	if got := ParMap(nil, 4, func(n int) int { return n }); len(got) != 0 {
		t.Fatalf("empty input: %v", got)
	}
}

func TestFanOutDeclarationOrder(t *testing.T) {
	got := FanOut(
		func() string { time.Sleep(10 * time.Millisecond); return "slow" },
		func() string { return "fast" },
	)
	if !reflect.DeepEqual(got, []string{"slow", "fast"}) {
		t.Fatalf("results must keep declaration order: %v", got)
	}
}
