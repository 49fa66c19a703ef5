package stream

// Event names a lifecycle notification.
type Event string

const (
	// EventError carries a processing or destroy error. Emitted at most once
	// per destroy, always before EventClose.
	EventError Event = "error"
	// EventClose is the terminal notification. Nothing is emitted after it.
	EventClose Event = "close"
	// EventFinish fires once all written chunks, and the flush step, are done.
	EventFinish Event = "finish"
	// EventEnd fires once a reader has consumed the whole readable side.
	EventEnd Event = "end"
)

// Listener handles an event. err is non-nil only for EventError.
type Listener func(err error)

// On registers fn for ev. Listeners run on the stream's loop in
// registration order.
func (t *Transform) On(ev Event, fn Listener) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.listeners[ev] = append(t.listeners[ev], fn)
	t.mu.Unlock()
}

// Once registers fn for a single delivery of ev.
func (t *Transform) Once(ev Event, fn Listener) {
	if fn == nil {
		return
	}
	fired := false
	t.On(ev, func(err error) {
		if fired {
			return
		}
		fired = true
		fn(err)
	})
}

// ListenerCount returns the number of listeners registered for ev.
func (t *Transform) ListenerCount(ev Event) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners[ev])
}

// Emit delivers ev to its listeners synchronously. It must be called from the
// loop, normally inside a Schedule'd task. Emitting EventClose closes Done and
// stops the loop once the current task returns.
func (t *Transform) Emit(ev Event, err error) {
	t.mu.Lock()
	fns := append([]Listener(nil), t.listeners[ev]...)
	t.mu.Unlock()

	t.log.Debug("event", t.fields(ev))
	if t.opts.Observer != nil {
		t.opts.Observer.EventEmitted(t.info, ev, err)
	}
	if ev == EventError && len(fns) == 0 {
		t.log.WithError(err).Error("unhandled stream error", t.fields(ev))
	}
	for _, fn := range fns {
		fn(err)
	}
	if ev == EventClose {
		t.closeOnce.Do(func() { close(t.done) })
		t.loop.stop()
	}
}
