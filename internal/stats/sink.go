package stats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"collectibleAMM/internal/model"
)

// JsonlSink appends window metrics to a JSONL file. Reruns append new rows
// for the same window; readers keep the last row per pool and window.
type JsonlSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlSink(path string) *JsonlSink {
	return &JsonlSink{path: path}
}

func (s *JsonlSink) UpsertWindowMetrics(_ context.Context, metrics []model.PoolWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics output: %w", err)
	}
	defer file.Close()

	for _, m := range metrics {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		data = append(data, '\n')
		if _, err := file.Write(data); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
