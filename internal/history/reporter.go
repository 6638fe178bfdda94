package history

import (
	"sync"

	"github.com/charmbracelet/log"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
)

// Reporter mirrors job events into a Store. Only stage changes, titles and
// results are written; percent ticks are ignored.
type Reporter struct {
	store  *Store
	logger *log.Logger

	mu   sync.Mutex
	last map[string]model.Status
}

// NewReporter returns a reporter writing into store. Save errors are logged
// to logger when it is non-nil.
func NewReporter(store *Store, logger *log.Logger) *Reporter {
	return &Reporter{store: store, logger: logger, last: make(map[string]model.Status)}
}

func (r *Reporter) Update(u progress.Update) {
	r.mu.Lock()
	changed := r.last[u.JobID] != u.Stage
	r.last[u.JobID] = u.Stage
	r.mu.Unlock()
	if !changed && u.Title == "" {
		return
	}
	r.save(Record{TaskID: u.JobID, Status: u.Stage, Title: u.Title, URL: u.URL})
}

func (r *Reporter) Log(progress.Log) {}

func (r *Reporter) Result(res progress.Result) {
	r.mu.Lock()
	delete(r.last, res.JobID)
	r.mu.Unlock()
	rec := Record{
		TaskID: res.JobID,
		Title:  res.Title,
		Status: res.Status,
		Path:   res.OutputPath,
		URL:    res.URL,
	}
	if res.Err != nil && res.Status == model.StatusFailed {
		rec.Error = res.Err.Error()
	}
	r.save(rec)
}

func (r *Reporter) save(rec Record) {
	if err := r.store.Upsert(rec); err != nil && r.logger != nil {
		r.logger.Warn("history not saved", "job", rec.TaskID, "err", err)
	}
}
