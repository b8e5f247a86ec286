package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoShell is returned for a navigation that failed with no cached shell to fall back to.
	ErrNoShell = errors.New("network unavailable and no cached shell")
	// ErrPassThrough is returned by Respond for requests the worker does not intercept.
	ErrPassThrough = errors.New("request not intercepted")
	// ErrInstallFailed wraps the cause of a failed install.
	ErrInstallFailed = errors.New("install failed")
)

// State is a worker lifecycle phase.
type State int

const (
	Parsed State = iota
	Installing
	Installed
	Activating
	Activated
	Redundant
)

func (s State) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Installing:
		return "installing"
	case Installed:
		return "installed"
	case Activating:
		return "activating"
	case Activated:
		return "activated"
	case Redundant:
		return "redundant"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Strategy is how a request is answered.
type Strategy int

const (
	PassThrough Strategy = iota
	NetworkFirst
	CacheFirst
)

func (s Strategy) String() string {
	switch s {
	case NetworkFirst:
		return "network-first"
	case CacheFirst:
		return "cache-first"
	}
	return "pass-through"
}

// Classify picks the strategy for r. Only GET is intercepted; navigations are
// recognized by Sec-Fetch-Mode or an Accept header asking for HTML.
// A request sent with Cache-Control: no-store is never intercepted.
func Classify(r *http.Request) Strategy {
	if r.Method != http.MethodGet {
		return PassThrough
	}
	if strings.Contains(r.Header.Get("Cache-Control"), "no-store") {
		return PassThrough
	}
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" || strings.Contains(r.Header.Get("Accept"), "text/html") {
		return NetworkFirst
	}
	return CacheFirst
}

// Worker is one version of the offline cache: it installs its manifest into a
// bucket named after the version and answers requests once activated.
type Worker struct {
	manifest Manifest
	scope    *url.URL
	storage  *Storage
	fetcher  Fetcher
	log      logrus.FieldLogger

	mu     sync.Mutex
	state  State
	bucket *Bucket
	wg     sync.WaitGroup

	shellKey  string
	assetKeys []string
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker) error

// WithScope sets the base path manifest URLs are resolved against. Defaults to "/".
func WithScope(scope string) WorkerOption {
	return func(w *Worker) error {
		u, err := ParseScope(scope)
		if err != nil {
			return err
		}
		w.scope = u
		return nil
	}
}

// WithLogger sets the worker logger.
func WithLogger(l logrus.FieldLogger) WorkerOption {
	return func(w *Worker) error {
		w.log = l
		return nil
	}
}

// NewWorker creates a worker in the Parsed state.
func NewWorker(m Manifest, storage *Storage, fetcher Fetcher, opts ...WorkerOption) (*Worker, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	w := &Worker{manifest: m, storage: storage, fetcher: fetcher, log: discardLogger()}
	w.scope, _ = ParseScope("/")
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.log = w.log.WithField("version", m.Version)

	var err error
	if w.shellKey, err = ResolveKey(w.scope, m.Shell); err != nil {
		return nil, fmt.Errorf("invalid shell URL %q: %w", m.Shell, err)
	}
	for _, a := range m.Assets {
		key, err := ResolveKey(w.scope, a)
		if err != nil {
			return nil, fmt.Errorf("invalid asset URL %q: %w", a, err)
		}
		w.assetKeys = append(w.assetKeys, key)
	}
	return w, nil
}

// Version returns the manifest version, which is also the bucket name.
func (w *Worker) Version() string { return w.manifest.Version }

// ShellKey returns the cache key of the offline page.
func (w *Worker) ShellKey() string { return w.shellKey }

// AssetKeys returns the cache keys of the precached assets.
func (w *Worker) AssetKeys() []string { return append([]string(nil), w.assetKeys...) }

// State returns the lifecycle phase.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// transition moves from one of the allowed states to next.
func (w *Worker) transition(next State, from ...State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range from {
		if w.state == s {
			w.state = next
			return nil
		}
	}
	return fmt.Errorf("cannot move worker %s from %s to %s", w.manifest.Version, w.state, next)
}

// Install fetches every manifest asset and stores them in the version bucket.
// Any network error or non-2xx response fails the whole install: nothing is
// stored and the worker becomes redundant. A redundant worker may install again.
func (w *Worker) Install(ctx context.Context) error {
	if err := w.transition(Installing, Parsed, Redundant); err != nil {
		return err
	}

	resps := make(map[string]*Response, len(w.assetKeys))
	for _, key := range w.assetKeys {
		resp, err := w.fetchKey(ctx, key)
		if err == nil && !resp.OK() {
			err = fmt.Errorf("unexpected status %d", resp.Status)
		}
		if err != nil {
			w.setState(Redundant)
			w.log.WithError(err).WithField("url", key).Error("install failed, cache not populated")
			return fmt.Errorf("%w: %s: %v", ErrInstallFailed, key, err)
		}
		resps[key] = resp
	}

	bucket, err := w.storage.Open(w.manifest.Version)
	if err != nil {
		w.setState(Redundant)
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}
	if err := bucket.PutAll(resps); err != nil {
		w.setState(Redundant)
		w.log.WithError(err).Error("install failed, could not store assets")
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}

	w.mu.Lock()
	w.bucket = bucket
	w.state = Installed
	w.mu.Unlock()
	w.log.WithField("assets", len(resps)).Info("worker installed")
	return nil
}

// Resume activates a parsed worker over the bucket a previous run installed,
// without fetching anything.
func (w *Worker) Resume() error {
	bucket, ok := w.storage.Lookup(w.manifest.Version)
	if !ok {
		return fmt.Errorf("no cached bucket for %s", w.manifest.Version)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Parsed {
		return fmt.Errorf("cannot resume worker %s from %s", w.manifest.Version, w.state)
	}
	w.bucket = bucket
	w.state = Activated
	w.log.Info("worker resumed")
	return nil
}

// Activate deletes every bucket except the current version and starts answering requests.
func (w *Worker) Activate(ctx context.Context) error {
	if err := w.transition(Activating, Installed); err != nil {
		return err
	}

	for _, name := range w.storage.Keys() {
		if name == w.manifest.Version {
			continue
		}
		if err := ctx.Err(); err != nil {
			w.setState(Installed)
			return err
		}
		if _, err := w.storage.Delete(name); err != nil {
			w.setState(Installed)
			w.log.WithError(err).WithField("bucket", name).Error("failed to delete old cache")
			return err
		}
		w.log.WithField("bucket", name).Info("deleted old cache")
	}
	if err := w.storage.SetActive(w.manifest); err != nil {
		w.log.WithError(err).Warn("failed to record the active version")
	}

	w.setState(Activated)
	w.log.Info("worker activated")
	return nil
}

// markRedundant retires a worker that was replaced.
func (w *Worker) markRedundant() {
	w.setState(Redundant)
}

// Respond answers r with the strategy Classify picks. Requests it does not intercept
// return ErrPassThrough and must go to the network unchanged.
func (w *Worker) Respond(ctx context.Context, r *http.Request) (*Response, error) {
	switch Classify(r) {
	case NetworkFirst:
		return w.networkFirst(ctx, r)
	case CacheFirst:
		return w.cacheFirst(ctx, r)
	}
	return nil, ErrPassThrough
}

func (w *Worker) networkFirst(ctx context.Context, r *http.Request) (*Response, error) {
	key := RequestKey(r.URL)
	resp, err := w.fetch(ctx, r, key)
	if err == nil {
		if resp.OK() {
			w.put(w.shellKey, resp)
		}
		return resp, nil
	}

	w.log.WithError(err).WithField("url", key).Warn("navigation failed, serving cached shell")
	if shell, ok := w.storage.Match(w.shellKey); ok {
		return shell, nil
	}
	return nil, ErrNoShell
}

func (w *Worker) cacheFirst(ctx context.Context, r *http.Request) (*Response, error) {
	key := RequestKey(r.URL)
	if cached, ok := w.storage.Match(key); ok {
		w.revalidate(ctx, r, key)
		return cached, nil
	}

	resp, err := w.fetch(ctx, r, key)
	if err != nil {
		w.log.WithError(err).WithField("url", key).Warn("asset fetch failed with nothing cached")
		return gatewayTimeout(key), nil
	}
	if resp.OK() {
		w.put(key, resp)
	}
	return resp, nil
}

// revalidate refreshes key in the background. It is detached from the request
// context so it outlives the response it follows.
func (w *Worker) revalidate(ctx context.Context, r *http.Request, key string) {
	bg := context.WithoutCancel(ctx)
	req := r.Clone(bg)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		resp, err := w.fetch(bg, req, key)
		if err != nil {
			w.log.WithError(err).WithField("url", key).Debug("background revalidation failed")
			return
		}
		if resp.OK() {
			w.put(key, resp)
		}
	}()
}

// Wait blocks until background revalidations have finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// put writes through the bucket the worker installed. Once a newer worker has
// deleted that bucket the write is rejected instead of recreating it.
func (w *Worker) put(key string, resp *Response) {
	w.mu.Lock()
	bucket := w.bucket
	w.mu.Unlock()
	if bucket == nil {
		return
	}
	if err := bucket.Put(key, resp); err != nil {
		w.log.WithError(err).WithField("url", key).Debug("cache not updated")
	}
}

func (w *Worker) fetch(ctx context.Context, r *http.Request, key string) (*Response, error) {
	resp, err := w.fetcher.Fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	return ReadResponse(key, resp)
}

func (w *Worker) fetchKey(ctx context.Context, key string) (*Response, error) {
	req, err := newGet(ctx, key)
	if err != nil {
		return nil, err
	}
	return w.fetch(ctx, req, key)
}

func gatewayTimeout(key string) *Response {
	return &Response{
		Key:    key,
		Status: http.StatusGatewayTimeout,
		Header: http.Header{},
	}
}
