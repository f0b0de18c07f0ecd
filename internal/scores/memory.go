package scores

import (
	"context"
	"sync"
)

// Memory keeps scores in process memory. History is lost on restart.
type Memory struct {
	mu     sync.RWMutex
	titles map[string][]Entry
}

// NewMemory constructs an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{titles: make(map[string][]Entry)}
}

func (m *Memory) Record(ctx context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles[e.Title] = append(m.titles[e.Title], e)
	return nil
}

func (m *Memory) History(ctx context.Context, title string, descending bool) ([]Entry, error) {
	m.mu.RLock()
	out := append([]Entry{}, m.titles[title]...)
	m.mu.RUnlock()
	Sort(out, descending)
	return out, nil
}
