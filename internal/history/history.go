// Package history persists a record of every job across runs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tubeshift/internal/model"
)

// Record is one persisted job entry.
type Record struct {
	TaskID    string       `json:"task_id"`
	Title     string       `json:"title"`
	Status    model.Status `json:"status"`
	Path      string       `json:"path,omitempty"`
	URL       string       `json:"url,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Error     string       `json:"error,omitempty"`
	Seq       int          `json:"seq,omitempty"`
}

type state struct {
	NextID int      `json:"next_id"`
	Items  []Record `json:"items"`
}

// Store is a JSON file of job records, safe for concurrent use.
// Records keep insertion order.
type Store struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	nextID int
	items  []Record
	index  map[string]int
}

// Open loads the store at path. A missing or unreadable file yields an
// empty store; only I/O errors other than not-exist are returned.
func Open(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now, nextID: 1, index: map[string]int{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read history: %w", err)
	}
	s.load(data)
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// load replaces the contents with the sanitised form of data. Malformed
// JSON leaves the store empty.
func (s *Store) load(data []byte) {
	var raw struct {
		NextID json.RawMessage   `json:"next_id"`
		Items  []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return
	}
	var next int
	if err := json.Unmarshal(raw.NextID, &next); err != nil || next < 1 {
		next = 1
	}
	s.nextID = next

	for _, item := range raw.Items {
		var rec struct {
			TaskID    any  `json:"task_id"`
			Title     any  `json:"title"`
			Status    any  `json:"status"`
			Path      any  `json:"path"`
			URL       any  `json:"url"`
			CreatedAt any  `json:"created_at"`
			Error     any  `json:"error"`
			Seq       *int `json:"seq"`
		}
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		id := strings.TrimSpace(str(rec.TaskID))
		if id == "" {
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		r := Record{
			TaskID: id,
			Title:  str(rec.Title),
			Status: sanitizeStatus(str(rec.Status)),
			Path:   strings.TrimSpace(str(rec.Path)),
			URL:    strings.TrimSpace(str(rec.URL)),
			Error:  str(rec.Error),
		}
		if r.Title == "" {
			r.Title = id
		}
		if ts, err := time.Parse(time.RFC3339Nano, str(rec.CreatedAt)); err == nil {
			r.CreatedAt = ts
		} else {
			r.CreatedAt = s.now()
		}
		if rec.Seq != nil && *rec.Seq > 0 {
			r.Seq = *rec.Seq
			if r.Seq >= s.nextID {
				s.nextID = r.Seq + 1
			}
		}
		s.index[id] = len(s.items)
		s.items = append(s.items, r)
	}
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

// sanitizeStatus maps a stored status onto one that makes sense after a
// restart: jobs that were in flight can no longer be running.
func sanitizeStatus(s string) model.Status {
	st := model.Status(strings.TrimSpace(s))
	switch {
	case st == "":
		return model.StatusDone
	case st.Terminal():
		return st
	case st.Valid():
		return model.StatusCancelled
	default:
		return model.StatusDone
	}
}

// Items returns a copy of all records in insertion order.
func (s *Store) Items() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the record for id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Record{}, false
	}
	return s.items[i], true
}

// NextID is the sequence number the next new record will get.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

// Upsert inserts rec or merges it into the existing record with the same
// TaskID. Empty fields of rec never clear stored values, except Error which
// is cleared once a job reaches done. A status that would move the record
// backwards, such as a late queued event, is ignored. The store is saved
// afterwards.
func (s *Store) Upsert(rec Record) error {
	if strings.TrimSpace(rec.TaskID) == "" {
		return errors.New("history: empty task id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[rec.TaskID]; ok {
		cur := &s.items[i]
		if rec.Title != "" {
			cur.Title = rec.Title
		}
		advanced := rec.Status != "" && model.CanAdvance(cur.Status, rec.Status)
		if advanced {
			cur.Status = rec.Status
		}
		if rec.Path != "" {
			cur.Path = rec.Path
		}
		if rec.URL != "" {
			cur.URL = rec.URL
		}
		if rec.Error != "" {
			cur.Error = rec.Error
		} else if advanced && rec.Status == model.StatusDone {
			cur.Error = ""
		}
		return s.saveLocked()
	}

	if rec.Title == "" {
		rec.Title = rec.TaskID
	}
	if rec.Status == "" {
		rec.Status = model.StatusQueued
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	rec.Seq = s.nextID
	s.nextID++
	s.index[rec.TaskID] = len(s.items)
	s.items = append(s.items, rec)
	return s.saveLocked()
}

// Remove deletes the record for id. Active jobs are kept; it reports
// whether a record was removed.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok || s.items[i].Status.Active() {
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()
	return true, s.saveLocked()
}

// Clear drops every record that is not queued or running and returns how
// many were removed.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, r := range s.items {
		if r.Status.Terminal() {
			continue
		}
		kept = append(kept, r)
	}
	n := len(s.items) - len(kept)
	s.items = kept
	s.reindex()
	return n, s.saveLocked()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, r := range s.items {
		s.index[r.TaskID] = i
	}
}

// saveLocked replaces the file atomically through a temp file and rename.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	items := s.items
	if items == nil {
		items = []Record{}
	}
	data, err := json.MarshalIndent(state{NextID: s.nextID, Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
