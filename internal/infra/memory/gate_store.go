package memory

import (
	"context"
	"sync"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
)

// GateStore keeps the admin open/closed flags in memory. The zero state means
// every quiz is open.
type GateStore struct {
	mu    sync.RWMutex
	state domain.QuizOpenState
}

func NewGateStore() *GateStore {
	return &GateStore{state: domain.QuizOpenState{}}
}

func (s *GateStore) GetOpenState(_ context.Context) (domain.QuizOpenState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make(domain.QuizOpenState, len(s.state))
	for quizID, open := range s.state {
		copied[quizID] = open
	}
	return copied, nil
}

func (s *GateStore) PutOpenState(_ context.Context, state domain.QuizOpenState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(domain.QuizOpenState, len(state))
	for quizID, open := range state {
		copied[quizID] = open
	}
	s.state = copied
	return nil
}
