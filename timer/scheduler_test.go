package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestManualFiresInOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var fired []string
	m.Schedule(3*time.Second, func() { fired = append(fired, "c") })
	m.Schedule(1*time.Second, func() { fired = append(fired, "a") })
	m.Schedule(2*time.Second, func() {
		fired = append(fired, "b")
		m.Schedule(500*time.Millisecond, func() { fired = append(fired, "b2") })
	})

	m.Advance(2500 * time.Millisecond)
	if !cmp.Equal(fired, []string{"a", "b", "b2"}) {
		t.Errorf("fired %v", fired)
	}
	if m.Now() != time.Unix(0, 0).Add(2500*time.Millisecond) {
		t.Errorf("now %v", m.Now())
	}
	if m.Pending() != 1 {
		t.Errorf("pending %d", m.Pending())
	}
	if !m.FireNext() || fired[len(fired)-1] != "c" {
		t.Errorf("fired %v", fired)
	}
	if m.FireNext() {
		t.Error("FireNext with nothing pending")
	}
}

func TestManualCancelIsIdempotent(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := false
	h := m.Schedule(time.Second, func() { fired = true })
	m.Cancel(h)
	m.Cancel(h)
	m.Advance(2 * time.Second)
	if fired {
		t.Error("cancelled callback fired")
	}

	h = m.Schedule(time.Second, func() {})
	m.Advance(time.Second)
	m.Cancel(h)
	if m.Pending() != 0 {
		t.Errorf("pending %d", m.Pending())
	}
}

func TestWallClock(t *testing.T) {
	w := NewWallClock(nil)
	var wg sync.WaitGroup
	wg.Add(1)
	w.Schedule(10*time.Millisecond, wg.Done)

	cancelled := w.Schedule(20*time.Millisecond, func() { t.Error("cancelled callback fired") })
	w.Cancel(cancelled)
	w.Cancel(cancelled)

	wg.Wait()
	time.Sleep(40 * time.Millisecond)
	if w.Pending() != 0 {
		t.Errorf("pending %d", w.Pending())
	}
}

func TestWallClockRecoversPanics(t *testing.T) {
	crashed := make(chan interface{}, 1)
	w := NewWallClock(func(err interface{}) { crashed <- err })
	w.Schedule(time.Millisecond, func() { panic("boom") })
	select {
	case err := <-crashed:
		if err != "boom" {
			t.Errorf("crash handler got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("crash handler not called")
	}
}
