package timer

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by a virtual clock. Nothing fires until the
// clock is moved with Advance or FireNext; callbacks then run on the caller's
// goroutine in expiry order.
type Manual struct {
	lock    sync.Mutex
	now     time.Time
	nextID  Handle
	pending map[Handle]*manualTimer
}

type manualTimer struct {
	id Handle
	at time.Time
	fn func()
}

func NewManual(start time.Time) *Manual {
	return &Manual{
		now:     start,
		pending: make(map[Handle]*manualTimer),
	}
}

func (m *Manual) Now() time.Time {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.now
}

func (m *Manual) Schedule(delay time.Duration, fn func()) Handle {
	m.lock.Lock()
	defer m.lock.Unlock()
	if delay < 0 {
		delay = 0
	}
	m.nextID++
	m.pending[m.nextID] = &manualTimer{id: m.nextID, at: m.now.Add(delay), fn: fn}
	return m.nextID
}

func (m *Manual) Cancel(h Handle) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.pending, h)
}

func (m *Manual) Pending() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.pending)
}

// NextExpiry returns when the earliest pending callback is due.
func (m *Manual) NextExpiry() (time.Time, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	next := m.earliest()
	if next == nil {
		return time.Time{}, false
	}
	return next.at, true
}

// Advance moves the clock forward by d, firing every callback that comes due,
// including ones scheduled by callbacks fired along the way.
func (m *Manual) Advance(d time.Duration) {
	m.lock.Lock()
	target := m.now.Add(d)
	m.lock.Unlock()
	for {
		m.lock.Lock()
		next := m.earliest()
		if next == nil || next.at.After(target) {
			m.now = target
			m.lock.Unlock()
			return
		}
		m.now = next.at
		delete(m.pending, next.id)
		m.lock.Unlock()
		next.fn()
	}
}

// FireNext jumps the clock to the earliest pending callback and runs it.
func (m *Manual) FireNext() bool {
	m.lock.Lock()
	next := m.earliest()
	if next == nil {
		m.lock.Unlock()
		return false
	}
	m.now = next.at
	delete(m.pending, next.id)
	m.lock.Unlock()
	next.fn()
	return true
}

func (m *Manual) earliest() *manualTimer {
	var next *manualTimer
	for _, t := range m.pending {
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.id < next.id) {
			next = t
		}
	}
	return next
}
