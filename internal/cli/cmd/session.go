package cmd

import (
	"context"

	"tubeshift/internal/dirs"
	"tubeshift/internal/history"
	"tubeshift/internal/metrics"
	"tubeshift/internal/pipeline"
	"tubeshift/internal/preview"
	"tubeshift/internal/progress"
	"tubeshift/internal/queue"
	"tubeshift/internal/util/deps"
)

// eventBuffer bounds how far workers may run ahead of the display.
const eventBuffer = 256

// session is one batch of jobs: the worker pool, the event channel that a
// single consumer drains, and the observers hanging off the reporter.
type session struct {
	events  chan progress.Event
	pool    *queue.Pool
	store   *history.Store
	metrics *metrics.Metrics
	preview *preview.Fetcher

	stopMetrics context.CancelFunc
}

func (a *app) newSession(ctx context.Context, paths deps.Paths) *session {
	s := &session{
		events:  make(chan progress.Event, eventBuffer),
		metrics: metrics.New(),
	}

	var histRep progress.Reporter
	if p, err := dirs.HistoryFile(); err == nil {
		store, err := history.Open(p)
		if err != nil {
			a.logger.Warn("history unavailable", "path", p, "err", err)
		}
		s.store = store
		histRep = history.NewReporter(store, a.logger)
	}

	rep := s.metrics.Wrap(progress.Multi(progress.NewChanReporter(s.events), histRep))

	svc := pipeline.NewService(
		pipeline.WithSettings(a.settings),
		pipeline.WithDownloaderPath(paths.Downloader),
		pipeline.WithFFmpegPath(paths.FFmpeg),
		pipeline.WithFFprobePath(paths.FFprobe),
		pipeline.WithReporter(rep),
		pipeline.WithLogger(a.logger),
	)
	s.pool = queue.New(ctx, svc, a.settings.Jobs, queue.WithReporter(rep))
	s.preview = preview.New(paths.Downloader, a.logger)

	mctx, cancel := context.WithCancel(ctx)
	s.stopMetrics = cancel
	if addr := a.runtime.MetricsAddr; addr != "" {
		go func() {
			a.logger.Info("serving metrics", "addr", addr)
			if err := s.metrics.Serve(mctx, addr); err != nil {
				a.logger.Error("metrics server", "err", err)
			}
		}()
	}
	return s
}

// drainAndClose waits for the workers, then closes the event channel. Any
// events not consumed elsewhere are discarded.
func (s *session) drainAndClose() {
	done := make(chan struct{})
	go func() {
		for range s.events {
		}
		close(done)
	}()
	_ = s.pool.Wait()
	close(s.events)
	<-done
	s.stopMetrics()
}
