// Package payreturn runs the local page the payment provider redirects back to.
// A hit on /payment/return is the "user came back" half of the checkout wait.
package payreturn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/pawtopia/pkg/middleware/logging"
)

const ReturnPath = "/payment/return"

// Signal is a one-shot event. The first Fire wins; later calls are no-ops.
type Signal struct {
	once sync.Once
	ch   chan struct{}
	ref  string
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

func (s *Signal) Fire(ref string) bool {
	fired := false
	s.once.Do(func() {
		s.ref = ref
		close(s.ch)
		fired = true
	})
	return fired
}

func (s *Signal) Done() <-chan struct{} { return s.ch }

// Reference is the provider reference passed on return, valid once Done is closed.
func (s *Signal) Reference() string {
	select {
	case <-s.ch:
		return s.ref
	default:
		return ""
	}
}

type Listener struct {
	addr   string
	logger *slog.Logger
	e      *echo.Echo

	mu     sync.Mutex
	signal *Signal
	srv    *http.Server
	bound  string
}

func New(addr string, logger *slog.Logger) *Listener {
	l := &Listener{addr: addr, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET(ReturnPath, l.handleReturn)

	l.e = e
	return l
}

func (l *Listener) Handler() http.Handler { return l.e }

// Arm installs a fresh signal for the next checkout and returns it.
func (l *Listener) Arm() *Signal {
	s := NewSignal()
	l.mu.Lock()
	l.signal = s
	l.mu.Unlock()
	return s
}

func (l *Listener) handleReturn(c echo.Context) error {
	ref := c.QueryParam("ref")

	l.mu.Lock()
	s := l.signal
	l.mu.Unlock()

	if s == nil || !s.Fire(ref) {
		return c.String(http.StatusOK, "No payment is waiting. You can close this tab.")
	}
	l.logger.Info("payment_return_received", "reference", ref)
	return c.String(http.StatusOK, "Thanks! Return to Pawtopia to see your order.")
}

// Start binds the address and serves in the background.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("payreturn listen %s: %w", l.addr, err)
	}

	srv := &http.Server{
		Handler:           l.e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	l.mu.Lock()
	l.srv = srv
	l.bound = ln.Addr().String()
	l.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("payreturn_server_error", "error", err)
		}
	}()
	l.logger.Info("payreturn_listening", "addr", l.bound)
	return nil
}

// ReturnURL is the address to hand to the payment provider.
func (l *Listener) ReturnURL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	addr := l.bound
	if addr == "" {
		addr = l.addr
	}
	return "http://" + addr + ReturnPath
}

func (l *Listener) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	srv := l.srv
	l.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
