package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/AyeleBedada/trial-LMS/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Catalog caches quiz definitions in Redis and falls back to a loader on
// cache miss. Definitions are stored as:
//
//	SET catalog:quiz:{quizID} {definition JSON}
//	SET catalog:index         {JSON array of quiz IDs}
type Catalog struct {
	client *redis.Client
	loader memory.CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalog(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration) *Catalog {
	return &Catalog{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	raw, err := c.client.Get(ctx, c.quizKey(quizID)).Result()
	if err == nil {
		var quiz domain.QuizDefinition
		if err := json.Unmarshal([]byte(raw), &quiz); err == nil {
			return quiz, nil
		}
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := c.client.Get(ctx, c.quizKey(quizID)).Result()
		if err == nil {
			var quiz domain.QuizDefinition
			if err := json.Unmarshal([]byte(raw), &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizDefinition{}, err
		}
		c.fill(ctx, []domain.QuizDefinition{quiz}, false)
		return quiz, nil
	})
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return result.(domain.QuizDefinition), nil
}

func (c *Catalog) ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error) {
	if quizzes, ok := c.listFromCache(ctx); ok {
		return quizzes, nil
	}

	result, err, _ := c.sf.Do("catalog:index", func() (interface{}, error) {
		if quizzes, ok := c.listFromCache(ctx); ok {
			return quizzes, nil
		}

		quizzes, err := c.loader.ListQuizzes(ctx)
		if err != nil {
			return nil, err
		}
		c.fill(ctx, quizzes, true)
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizDefinition), nil
}

func (c *Catalog) listFromCache(ctx context.Context) ([]domain.QuizDefinition, bool) {
	raw, err := c.client.Get(ctx, c.indexKey()).Result()
	if err != nil {
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, false
	}
	quizzes := make([]domain.QuizDefinition, 0, len(ids))
	for _, id := range ids {
		entry, err := c.client.Get(ctx, c.quizKey(id)).Result()
		if err != nil {
			return nil, false
		}
		var quiz domain.QuizDefinition
		if err := json.Unmarshal([]byte(entry), &quiz); err != nil {
			return nil, false
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, true
}

// fill writes definitions (and optionally the index) back to Redis, best effort.
func (c *Catalog) fill(ctx context.Context, quizzes []domain.QuizDefinition, withIndex bool) {
	ttl := c.ttlWithJitter()
	pipe := c.client.Pipeline()
	ids := make([]string, 0, len(quizzes))
	for _, quiz := range quizzes {
		data, err := json.Marshal(quiz)
		if err != nil {
			continue
		}
		ids = append(ids, quiz.ID)
		pipe.Set(ctx, c.quizKey(quiz.ID), data, ttl)
	}
	if withIndex {
		if data, err := json.Marshal(ids); err == nil {
			pipe.Set(ctx, c.indexKey(), data, ttl)
		}
	}
	_, _ = pipe.Exec(ctx)
}

func (c *Catalog) quizKey(quizID string) string {
	return fmt.Sprintf("catalog:quiz:%s", quizID)
}

func (c *Catalog) indexKey() string {
	return "catalog:index"
}

func (c *Catalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
