package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ScoreStore keeps attempt records in one hash per user:
//
//	HSET scores:{email} {quizID} {record JSON}
//
// The whole record lives in a single field, so each write is atomic as a
// unit; best and attempts can never be persisted separately.
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) GetRecord(ctx context.Context, email, quizID string) (domain.AttemptRecord, bool, error) {
	raw, err := s.client.HGet(ctx, s.key(email), quizID).Result()
	if err == redis.Nil {
		return domain.AttemptRecord{}, false, nil
	}
	if err != nil {
		return domain.AttemptRecord{}, false, fmt.Errorf("get record: %w", err)
	}
	var rec domain.AttemptRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.AttemptRecord{}, false, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, true, nil
}

func (s *ScoreStore) PutRecord(ctx context.Context, email, quizID string, rec domain.AttemptRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.client.HSet(ctx, s.key(email), quizID, data).Err(); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

func (s *ScoreStore) key(email string) string {
	return "scores:" + email
}
