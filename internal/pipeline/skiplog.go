package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// SkipLog records dropped candidates as JSONL, one entry per drop.
// Writes are best-effort: if the primary path is unwritable (read-only
// deployment filesystems), it falls back to the OS temp directory, and
// silently no-ops if that fails too. Safe for concurrent use.
type SkipLog struct {
	mu       sync.Mutex
	path     string
	fallback string
	disabled bool
}

type skipEntry struct {
	Reason string `json:"reason"`
	URL    string `json:"url"`
}

// NewSkipLog creates a skip log writing to the given file path
func NewSkipLog(path string) *SkipLog {
	return &SkipLog{
		path:     path,
		fallback: filepath.Join(os.TempDir(), "logs", filepath.Base(path)),
	}
}

// Record appends one skip entry. Never returns an error; logging must
// not abort the pipeline.
func (s *SkipLog) Record(reason, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return
	}

	line, err := json.Marshal(skipEntry{Reason: reason, URL: url})
	if err != nil {
		return
	}
	line = append(line, '\n')

	if s.append(s.path, line) {
		return
	}
	if s.append(s.fallback, line) {
		s.path = s.fallback
		return
	}
	s.disabled = true
}

func (s *SkipLog) append(path string, line []byte) bool {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	_, err = f.Write(line)
	return err == nil
}
