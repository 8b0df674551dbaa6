package strand

import "sync"

// Strand runs posted closures one at a time, in the order they were
// posted, on a single dedicated goroutine. It is the Go analogue of a
// Boost.Asio strand: a serial execution context layered over what would
// otherwise be concurrent completion handlers.
type Strand struct {
	tasks  chan func()
	once   sync.Once
	closed chan struct{}
}

// New starts a Strand with the given task queue depth. A depth of 0
// makes Post block until the running task (if any) has drained enough
// to accept the next one; callers that post from within a running task
// should prefer a buffered strand to avoid deadlocking on themselves.
func New(queueDepth int) *Strand {
	s := &Strand{
		tasks:  make(chan func(), queueDepth),
		closed: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Strand) run() {
	for {
		select {
		case fn, ok := <-s.tasks:
			if !ok {
				return
			}
			fn()
		case <-s.closed:
			return
		}
	}
}

// Post schedules fn to run on the strand's goroutine. It never blocks
// the caller waiting for fn to run — only, if the queue is full, on
// there being room to enqueue it. Post is itself safe to call from
// inside a task running on this same strand.
func (s *Strand) Post(fn func()) {
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case s.tasks <- fn:
	case <-s.closed:
	}
}

// Dispatch always queues fn exactly as Post does, whatever goroutine it
// is called from: Go gives no portable way to ask "am I the strand's
// goroutine", so fn is never run inline. Dispatch is Post under another
// name, kept distinct so call sites can document intent.
func (s *Strand) Dispatch(fn func()) {
	s.Post(fn)
}

// Close stops the strand's goroutine after its currently-queued tasks
// (if any are already being delivered) finish. Tasks posted after Close
// are silently dropped. Close is idempotent.
func (s *Strand) Close() {
	s.once.Do(func() {
		close(s.closed)
	})
}
