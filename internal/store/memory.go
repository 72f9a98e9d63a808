package store

import (
	"encoding/json"
	"sync"

	"github.com/sadopc/soulsync/internal/journal"
)

// Memory keeps the serialised aggregate in process. Err, when set, is
// returned from every Save.
type Memory struct {
	mu    sync.Mutex
	raw   []byte
	saves int
	Err   error
}

func (m *Memory) Load() (journal.AppData, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return journal.AppData{}, false, nil
	}
	var data journal.AppData
	if err := json.Unmarshal(m.raw, &data); err != nil {
		return journal.AppData{}, false, err
	}
	return data, true, nil
}

func (m *Memory) Save(data journal.AppData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.raw = raw
	m.saves++
	return nil
}

// Saves counts successful writes.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
