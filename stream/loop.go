package stream

import "sync"

// loop runs queued tasks one at a time. A goroutine is started when work
// arrives and exits once the queue is empty, so an idle stream holds none.
type loop struct {
	mu      sync.Mutex
	tasks   []func()
	running bool
	stopped bool
}

func newLoop() *loop {
	return &loop{}
}

// schedule queues fn. It reports false if the loop has stopped.
func (l *loop) schedule(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	l.tasks = append(l.tasks, fn)
	if !l.running {
		l.running = true
		go l.run()
	}
	return true
}

// stop drops pending tasks. The task currently running, if any, completes.
func (l *loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.tasks = nil
	l.mu.Unlock()
}

// idle reports whether no goroutine is serving the loop.
func (l *loop) idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.running
}

func (l *loop) run() {
	for {
		l.mu.Lock()
		if l.stopped || len(l.tasks) == 0 {
			l.running = false
			l.mu.Unlock()
			return
		}
		fn := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		fn()
	}
}
