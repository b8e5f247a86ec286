package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MessageSkipWaiting asks the runtime to activate a waiting worker now.
const MessageSkipWaiting = "skipWaiting"

// DefaultInstallRetry is the schedule on which failed installs are retried
const DefaultInstallRetry = "@every 1m"

// ErrUnknownMessage is returned by PostMessage for anything but MessageSkipWaiting.
var ErrUnknownMessage = errors.New("unknown lifecycle message")

// RuntimeOptions configures a Runtime.
type RuntimeOptions struct {
	// AutoActivate activates every installed worker at once instead of leaving
	// it waiting while another worker is active.
	AutoActivate bool
	// InstallRetry is a cron spec for retrying failed installs; empty disables retries.
	InstallRetry string
	Logger       logrus.FieldLogger
}

// Runtime hosts workers and drives their lifecycle: it installs registered
// workers, activates them when nothing else is active and holds the rest as
// waiting until told to skip waiting.
type Runtime struct {
	mu       sync.Mutex
	active   *Worker
	waiting  *Worker
	auto     bool
	retry    string
	log      logrus.FieldLogger
	cron     *cron.Cron
	retryIDs map[*Worker]cron.EntryID
}

// NewRuntime creates a runtime. Call Start to run install retries and Stop to end them.
func NewRuntime(opts RuntimeOptions) *Runtime {
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Runtime{
		auto:     opts.AutoActivate,
		retry:    opts.InstallRetry,
		log:      log,
		cron:     cron.New(),
		retryIDs: make(map[*Worker]cron.EntryID),
	}
}

// Start runs the retry scheduler in the background.
func (rt *Runtime) Start() {
	rt.cron.Start()
}

// Stop halts the retry scheduler and waits for a running retry to finish.
func (rt *Runtime) Stop() {
	<-rt.cron.Stop().Done()
}

// Active returns the worker answering requests, or nil.
func (rt *Runtime) Active() *Worker {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.active
}

// Waiting returns the installed worker waiting to be activated, or nil.
func (rt *Runtime) Waiting() *Worker {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.waiting
}

// Register installs w. It is activated at once when no worker is active or
// auto-activation is on; otherwise it waits. A failed install is returned and,
// if a retry schedule is set, retried until it succeeds.
func (rt *Runtime) Register(ctx context.Context, w *Worker) error {
	if err := w.Install(ctx); err != nil {
		rt.scheduleRetry(w)
		return err
	}
	rt.cancelRetry(w)

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.active == nil || rt.auto {
		return rt.activateLocked(ctx, w)
	}

	if rt.waiting != nil && rt.waiting != w {
		rt.waiting.markRedundant()
	}
	rt.waiting = w
	rt.log.WithField("version", w.Version()).Info("worker installed and waiting")
	return nil
}

// Resume makes w, restored from a previous run, the active worker. It fails
// when a worker is already active.
func (rt *Runtime) Resume(w *Worker) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.active != nil {
		return fmt.Errorf("worker %s is already active", rt.active.Version())
	}
	if err := w.Resume(); err != nil {
		return err
	}
	rt.active = w
	return nil
}

// PostMessage delivers a lifecycle message from a page.
func (rt *Runtime) PostMessage(ctx context.Context, msg string) error {
	if msg != MessageSkipWaiting {
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.waiting == nil {
		return nil
	}
	return rt.activateLocked(ctx, rt.waiting)
}

func (rt *Runtime) activateLocked(ctx context.Context, w *Worker) error {
	if err := w.Activate(ctx); err != nil {
		return err
	}
	if rt.active != nil && rt.active != w {
		rt.active.markRedundant()
	}
	if rt.waiting == w {
		rt.waiting = nil
	}
	rt.active = w
	return nil
}

func (rt *Runtime) scheduleRetry(w *Worker) {
	if rt.retry == "" {
		return
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, ok := rt.retryIDs[w]; ok {
		return
	}

	id, err := rt.cron.AddFunc(rt.retry, func() {
		if err := rt.Register(context.Background(), w); err != nil {
			rt.log.WithError(err).WithField("version", w.Version()).Warn("install retry failed")
		}
	})
	if err != nil {
		rt.log.WithError(err).WithField("schedule", rt.retry).Error("invalid install retry schedule")
		return
	}
	rt.retryIDs[w] = id
	rt.log.WithFields(logrus.Fields{"version": w.Version(), "schedule": rt.retry}).Info("install retry scheduled")
}

func (rt *Runtime) cancelRetry(w *Worker) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if id, ok := rt.retryIDs[w]; ok {
		rt.cron.Remove(id)
		delete(rt.retryIDs, w)
	}
}

// RetryPending reports whether a failed install of w is scheduled for retry.
func (rt *Runtime) RetryPending(w *Worker) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	_, ok := rt.retryIDs[w]
	return ok
}

// ValidateSchedule checks a cron spec as accepted for InstallRetry.
func ValidateSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	_, err := cron.ParseStandard(spec)
	return err
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
