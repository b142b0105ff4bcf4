package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zeu5/graphenv/types"
	"github.com/zeu5/graphenv/util"
)

// FileRecorder appends every episode summary as a json line
type FileRecorder struct {
	path string
	mu   sync.Mutex
}

var _ types.Recorder = &FileRecorder{}

func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

func (f *FileRecorder) Path() string {
	return f.path
}

func (f *FileRecorder) Record(_ context.Context, s *types.EpisodeSummary) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return util.AppendToFile(f.path, string(bs))
}
