package diagram

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/wordpath/pkg/render"
)

// DefaultInterval is the frame interval of a [Loop] (60 fps).
const DefaultInterval = time.Second / 60

// Loop drives a diagram from a single goroutine: it calls Frame on every
// tick and applies posted mutations between ticks. Frames that need a redraw
// are passed to the callback, which runs on the loop goroutine.
type Loop struct {
	d        *Diagram
	interval time.Duration
	onFrame  func(render.Frame)

	posts chan func(*Diagram)
	done  chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// NewLoop creates a stopped loop. interval <= 0 selects [DefaultInterval].
func NewLoop(d *Diagram, interval time.Duration, onFrame func(render.Frame)) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onFrame == nil {
		onFrame = func(render.Frame) {}
	}
	return &Loop{
		d:        d,
		interval: interval,
		onFrame:  onFrame,
		posts:    make(chan func(*Diagram), 64),
		done:     make(chan struct{}),
	}
}

// Start launches the loop goroutine. It runs until ctx is cancelled or Stop
// is called, then disposes the diagram. Calling Start twice has no effect.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true
	ctx, l.cancel = context.WithCancel(ctx)
	go l.run(ctx)
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer l.d.Dispose()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.posts:
			fn(l.d)
		case <-ticker.C:
			if f, redraw := l.d.Frame(); redraw {
				l.onFrame(f)
			}
		}
	}
}

// Post schedules fn to run on the loop goroutine between ticks. It blocks
// while the queue is full and reports false once the loop has stopped.
func (l *Loop) Post(fn func(*Diagram)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.posts <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Stop ends the loop and waits for the goroutine to exit, so no callback
// runs after Stop returns. A loop that was never started disposes the
// diagram directly.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.started = true
		l.mu.Unlock()
		l.d.Dispose()
		close(l.done)
		return
	}
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	<-l.done
}

// Done is closed when the loop has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }
