package memory

import (
	"context"
	"sync"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

// DefaultReportLimit bounds the retained history when no limit is configured.
const DefaultReportLimit = 200

// ReportLog is a fixed-capacity, newest-first ring of attempt reports.
// Overflow silently drops the oldest entries.
type ReportLog struct {
	limit   int
	mu      sync.RWMutex
	entries []domain.Report
}

func NewReportLog(limit int) *ReportLog {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	return &ReportLog{limit: limit}
}

func (l *ReportLog) Append(_ context.Context, report domain.Report) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]domain.Report{report}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
	return nil
}

func (l *ReportLog) List(_ context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	matched := make([]domain.Report, 0, len(l.entries))
	for _, entry := range l.entries {
		if filter.Matches(entry) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}
