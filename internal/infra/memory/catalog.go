package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches quiz definitions from a backing store (e.g. Postgres).
type CatalogLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error)
}

const listCacheKey = "__list"

// Catalog caches quiz definitions with TTL to avoid repeated DB hits.
type Catalog struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu      sync.RWMutex
	quizzes map[string]cachedQuiz
	list    cachedList
}

type cachedQuiz struct {
	quiz      domain.QuizDefinition
	expiresAt time.Time
}

type cachedList struct {
	quizzes   []domain.QuizDefinition
	expiresAt time.Time
}

func NewCatalog(loader CatalogLoader, ttl time.Duration) *Catalog {
	return &Catalog{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		quizzes: make(map[string]cachedQuiz),
	}
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.quizzes[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.quizzes[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.QuizDefinition{}, err
		}

		c.mu.Lock()
		c.quizzes[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return result.(domain.QuizDefinition), nil
}

func (c *Catalog) ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error) {
	now := c.clock()

	c.mu.RLock()
	if c.list.quizzes != nil && c.list.expiresAt.After(now) {
		list := c.list.quizzes
		c.mu.RUnlock()
		return list, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(listCacheKey, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.list.quizzes != nil && c.list.expiresAt.After(now) {
			list := c.list.quizzes
			c.mu.RUnlock()
			return list, nil
		}
		c.mu.RUnlock()

		quizzes, err := c.loader.ListQuizzes(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		expires := now.Add(c.ttlWithJitter())
		c.list = cachedList{quizzes: quizzes, expiresAt: expires}
		for _, quiz := range quizzes {
			c.quizzes[quiz.ID] = cachedQuiz{quiz: quiz, expiresAt: expires}
		}
		c.mu.Unlock()
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizDefinition), nil
}

func (c *Catalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader is a simple loader backed by a fixed quiz slice (useful
// for tests/demos and for running without Postgres).
type StaticCatalogLoader struct {
	quizzes []domain.QuizDefinition
}

func NewStaticCatalogLoader(quizzes []domain.QuizDefinition) *StaticCatalogLoader {
	return &StaticCatalogLoader{quizzes: quizzes}
}

func (l *StaticCatalogLoader) LoadQuiz(_ context.Context, quizID string) (domain.QuizDefinition, error) {
	for _, quiz := range l.quizzes {
		if quiz.ID == quizID {
			return quiz, nil
		}
	}
	return domain.QuizDefinition{}, domain.ErrQuizNotFound
}

func (l *StaticCatalogLoader) ListQuizzes(_ context.Context) ([]domain.QuizDefinition, error) {
	return l.quizzes, nil
}
