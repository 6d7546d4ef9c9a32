package redis

import (
	"context"
	"fmt"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/redis/go-redis/v9"
)

const gateKey = "quiz:gate"

// GateStore keeps the admin open/closed flags in a single hash:
//
//	HSET quiz:gate {quizID} 0|1
//
// A missing field means the quiz is open.
type GateStore struct {
	client *redis.Client
}

func NewGateStore(client *redis.Client) *GateStore {
	return &GateStore{client: client}
}

func (s *GateStore) GetOpenState(ctx context.Context) (domain.QuizOpenState, error) {
	fields, err := s.client.HGetAll(ctx, gateKey).Result()
	if err != nil {
		return nil, fmt.Errorf("get open state: %w", err)
	}
	state := make(domain.QuizOpenState, len(fields))
	for quizID, flag := range fields {
		state[quizID] = flag == "1"
	}
	return state, nil
}

func (s *GateStore) PutOpenState(ctx context.Context, state domain.QuizOpenState) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, gateKey)
	for quizID, open := range state {
		flag := "0"
		if open {
			flag = "1"
		}
		pipe.HSet(ctx, gateKey, quizID, flag)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put open state: %w", err)
	}
	return nil
}
