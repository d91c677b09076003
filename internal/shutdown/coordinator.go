package shutdown

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// reassertInterval is how often the coordinator re-claims the process
// signal handlers from other subsystems that may have registered their own.
const reassertInterval = 5 * time.Second

var signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// Coordinator owns exclusive registration of the shutdown signals for the
// whole process. Other subsystems (embedded frameworks, the A2A app) may
// install their own handlers at any time; the coordinator clears the full
// handler set for its signals on every assertion so that exactly one channel
// receives them. Shutdown is immediate: once requested, no in-flight request
// draining happens.
type Coordinator struct {
	ch   chan os.Signal
	done chan struct{}
	once sync.Once
	stop chan struct{}
}

// New builds a Coordinator and claims the signal handlers. The returned
// coordinator re-asserts its claim every few seconds until Stop or until a
// shutdown is requested.
func New() *Coordinator {
	c := &Coordinator{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
	c.assert()
	go c.run()
	return c
}

// assert replaces the entire registered handler set for the shutdown signals
// with the coordinator's own channel. Reset also detaches c.ch, so Notify
// must follow it on every pass, not only the first.
func (c *Coordinator) assert() {
	signal.Reset(signals...)
	signal.Notify(c.ch, signals...)
}

func (c *Coordinator) run() {
	ticker := time.NewTicker(reassertInterval)
	defer ticker.Stop()
	for {
		select {
		case sig := <-c.ch:
			slog.Info("shutdown signal received", "signal", sig.String())
			c.Request()
			return
		case <-ticker.C:
			c.assert()
		case <-c.stop:
			return
		}
	}
}

// WatchStdin treats a 'q' byte (or stdin closing) as a shutdown request.
// Intended for hosts that cannot deliver signals but can write a byte.
func (c *Coordinator) WatchStdin(r io.Reader) {
	go func() {
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			if b == 'q' || b == 0x03 {
				slog.Info("shutdown requested via stdin")
				c.Request()
				return
			}
		}
	}()
}

// Request triggers shutdown. Safe to call from any goroutine, any number of
// times, from any trigger source.
func (c *Coordinator) Request() {
	c.once.Do(func() { close(c.done) })
}

// Done is closed once shutdown has been requested.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Stop releases the signal claim without requesting shutdown. Used by tests.
func (c *Coordinator) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	signal.Stop(c.ch)
}
