package memory

import (
	"context"
	"sync"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore. Records are
// created lazily on first write and live for the life of the process.
type ScoreStore struct {
	mu      sync.RWMutex
	records map[string]map[string]domain.AttemptRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		records: make(map[string]map[string]domain.AttemptRecord),
	}
}

func (s *ScoreStore) GetRecord(_ context.Context, email, quizID string) (domain.AttemptRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byQuiz, ok := s.records[email]
	if !ok {
		return domain.AttemptRecord{}, false, nil
	}
	rec, ok := byQuiz[quizID]
	return rec, ok, nil
}

func (s *ScoreStore) PutRecord(_ context.Context, email, quizID string, rec domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byQuiz, ok := s.records[email]
	if !ok {
		byQuiz = make(map[string]domain.AttemptRecord)
		s.records[email] = byQuiz
	}
	byQuiz[quizID] = rec
	return nil
}
