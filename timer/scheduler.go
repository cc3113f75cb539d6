package timer

import (
	"runtime/debug"
	"sync"
	"time"

	"presidents.com/server/logging"
)

var schedulerLogger = logging.GetZeroLogger("timer::scheduler", nil)

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler runs one-shot callbacks after a delay. Cancel must be idempotent:
// cancelling a fired or already cancelled handle does nothing.
type Scheduler interface {
	Now() time.Time
	Schedule(delay time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// WallClock schedules callbacks on real timers. Callbacks run on their own
// goroutine; the receiver is responsible for serializing them.
type WallClock struct {
	lock   sync.Mutex
	nextID Handle
	timers map[Handle]*time.Timer

	crashHandler func(interface{})
}

func NewWallClock(crashHandler func(interface{})) *WallClock {
	return &WallClock{
		timers:       make(map[Handle]*time.Timer),
		crashHandler: crashHandler,
	}
}

func (w *WallClock) Now() time.Time {
	return time.Now()
}

func (w *WallClock) Schedule(delay time.Duration, fn func()) Handle {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.nextID++
	id := w.nextID
	w.timers[id] = time.AfterFunc(delay, func() {
		w.lock.Lock()
		_, live := w.timers[id]
		delete(w.timers, id)
		w.lock.Unlock()
		if live {
			w.run(fn)
		}
	})
	return id
}

func (w *WallClock) run(fn func()) {
	defer func() {
		err := recover()
		if err != nil {
			schedulerLogger.Error().
				Msgf("Timer callback panicked: %s\nStack Trace:\n%s", err, string(debug.Stack()))
			if w.crashHandler != nil {
				w.crashHandler(err)
			}
		}
	}()
	fn()
}

func (w *WallClock) Cancel(h Handle) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if t, ok := w.timers[h]; ok {
		t.Stop()
		delete(w.timers, h)
	}
}

// Pending returns the number of scheduled callbacks that have not fired.
func (w *WallClock) Pending() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return len(w.timers)
}
