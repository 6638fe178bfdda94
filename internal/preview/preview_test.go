package preview

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"

	"tubeshift/internal/util"
)

type metaRunner struct {
	calls atomic.Int32
}

func (m *metaRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	m.calls.Add(1)
	return util.CmdResult{Stdout: []byte(`{"id":"v","title":"Preview Title","thumbnail":"https://i.ytimg.com/vi/v/hq.jpg","duration":61}`)}, nil
}

func TestFetch(t *testing.T) {
	mr := &metaRunner{}
	f := New("yt-dlp", nil, WithRunner(mr), WithLimit(rate.Inf, 1))

	res := f.Fetch(context.Background(), " https://youtu.be/v ")
	if res.Err != nil {
		t.Fatalf("Fetch() error: %v", res.Err)
	}
	if res.Token != 1 || res.URL != "https://youtu.be/v" {
		t.Errorf("token/url = %d %q", res.Token, res.URL)
	}
	if res.Preview.Title != "Preview Title" || res.Preview.DurationString != "01:01" {
		t.Errorf("preview = %+v", res.Preview)
	}
}

func TestFetchInvalidURLSkipsDownloader(t *testing.T) {
	mr := &metaRunner{}
	f := New("yt-dlp", nil, WithRunner(mr), WithLimit(rate.Inf, 1))
	res := f.Fetch(context.Background(), "not a url")
	if !errors.Is(res.Err, util.ErrInvalidURL) {
		t.Errorf("err = %v", res.Err)
	}
	if mr.calls.Load() != 0 {
		t.Error("downloader called for invalid URL")
	}
}

func TestSupersededLookupIsDropped(t *testing.T) {
	mr := &metaRunner{}
	f := New("yt-dlp", nil, WithRunner(mr), WithLimit(rate.Inf, 1))

	oldToken, oldCtx := f.Next(context.Background())
	newToken, _ := f.Next(context.Background())
	if newToken <= oldToken {
		t.Fatalf("tokens not increasing: %d then %d", oldToken, newToken)
	}
	if oldCtx.Err() == nil {
		t.Error("older lookup not cancelled")
	}
	res := f.FetchToken(context.Background(), oldToken, "https://youtu.be/v")
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("stale lookup err = %v", res.Err)
	}
	if mr.calls.Load() != 0 {
		t.Error("stale lookup reached the downloader")
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	f := New("yt-dlp", nil, WithRunner(&metaRunner{}), WithLimit(rate.Limit(0.001), 1))
	if res := f.Fetch(context.Background(), "https://youtu.be/a"); res.Err != nil {
		t.Fatalf("first fetch: %v", res.Err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := f.Fetch(ctx, "https://youtu.be/b"); res.Err == nil {
		t.Error("expected limiter wait to fail on a cancelled context")
	}
}

type ctxRunner struct {
	ctx context.Context
}

func (c *ctxRunner) Run(ctx context.Context, _ util.CmdSpec) (util.CmdResult, error) {
	c.ctx = ctx
	return util.CmdResult{Stdout: []byte(`{"id":"v","title":"T"}`)}, nil
}

func TestFinishedLookupReleasesContext(t *testing.T) {
	cr := &ctxRunner{}
	f := New("yt-dlp", nil, WithRunner(cr), WithLimit(rate.Inf, 1))
	if res := f.Fetch(context.Background(), "https://youtu.be/v"); res.Err != nil {
		t.Fatalf("Fetch() error: %v", res.Err)
	}
	if cr.ctx == nil || cr.ctx.Err() == nil {
		t.Error("context of the finished lookup still live")
	}

	// An older lookup finishing must not cancel the newer one.
	old, oldCtx := f.Next(context.Background())
	_, newCtx := f.Next(context.Background())
	f.FetchToken(oldCtx, old, "https://youtu.be/v")
	if newCtx.Err() != nil {
		t.Error("newer lookup cancelled by an older one finishing")
	}
}
