package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// Ensure ScanHistory implements the interface.
var _ driven.ScanHistory = (*ScanHistory)(nil)

// ScanHistory is an in-memory implementation of driven.ScanHistory.
type ScanHistory struct {
	mu      sync.RWMutex
	records map[string][]domain.ScanRecord // keyed by root, oldest first
}

// NewScanHistory creates an empty scan history.
func NewScanHistory() *ScanHistory {
	return &ScanHistory{records: make(map[string][]domain.ScanRecord)}
}

// RecordScan appends a record.
func (h *ScanHistory) RecordScan(_ context.Context, record domain.ScanRecord) error {
	if record.Root == "" {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	list := append(h.records[record.Root], record)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartedAt.Before(list[j].StartedAt)
	})
	h.records[record.Root] = list
	return nil
}

// LastScan returns the newest record for root, or nil.
func (h *ScanHistory) LastScan(_ context.Context, root string) (*domain.ScanRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	list := h.records[root]
	if len(list) == 0 {
		return nil, nil
	}
	last := list[len(list)-1]
	return &last, nil
}

// PruneScans keeps the newest keep records per root.
func (h *ScanHistory) PruneScans(_ context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for root, list := range h.records {
		if len(list) > keep {
			h.records[root] = append([]domain.ScanRecord(nil), list[len(list)-keep:]...)
		}
	}
	return nil
}
