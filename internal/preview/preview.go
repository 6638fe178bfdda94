// Package preview fetches title and thumbnail metadata for a URL before it
// is queued, independent of the job workers.
package preview

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"tubeshift/internal/downloader"
	"tubeshift/internal/model"
	"tubeshift/internal/util"
)

// Result is one finished lookup. Token identifies the request so callers
// can drop results that a newer request has superseded.
type Result struct {
	Token   uint64
	URL     string
	Preview model.Preview
	Err     error
}

// Fetcher runs metadata lookups, at most one in flight: starting a new one
// cancels the previous.
type Fetcher struct {
	dlPath  string
	runner  util.CmdRunner
	logger  *log.Logger
	limiter *rate.Limiter

	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLimit overrides the request rate (default 2/s, burst 1).
func WithLimit(r rate.Limit, burst int) Option {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(r, burst)
	}
}

// WithRunner injects a custom command runner.
func WithRunner(r util.CmdRunner) Option {
	return func(f *Fetcher) {
		f.runner = r
	}
}

// New returns a Fetcher using the downloader at dlPath.
func New(dlPath string, logger *log.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		dlPath:  dlPath,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(f)
	}
	if f.runner == nil {
		f.runner = util.NewDefaultRunner(logger)
	}
	return f
}

// Next reserves a token for a new lookup and cancels the one in flight.
func (f *Fetcher) Next(ctx context.Context) (uint64, context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
	f.token++
	c, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	return f.token, c
}

func (f *Fetcher) release(token uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == f.token && f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Current returns the token of the latest lookup.
func (f *Fetcher) Current() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// Fetch looks up rawURL under a fresh token, waiting for the rate limiter.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Result {
	token, c := f.Next(ctx)
	return f.FetchToken(c, token, rawURL)
}

// FetchToken performs a lookup reserved with Next. The lookup's context is
// released when it returns, unless a newer lookup has taken over.
func (f *Fetcher) FetchToken(ctx context.Context, token uint64, rawURL string) Result {
	defer f.release(token)
	res := Result{Token: token, URL: rawURL}
	url, err := util.ValidateURL(rawURL)
	if err != nil {
		res.Err = err
		return res
	}
	res.URL = url
	if err := f.limiter.Wait(ctx); err != nil {
		res.Err = err
		return res
	}
	if token != f.Current() {
		res.Err = context.Canceled
		return res
	}
	res.Preview, res.Err = downloader.FetchMetadata(ctx, url, downloader.Options{
		DownloaderPath: f.dlPath,
		Runner:         f.runner,
		Logger:         f.logger,
	})
	if res.Err != nil && f.logger != nil {
		f.logger.Debug("preview failed", "url", url, "err", res.Err)
	}
	return res
}
