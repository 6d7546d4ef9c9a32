package redis

import (
	"context"
	"testing"
	"time"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/AyeleBedada/trial-LMS/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader([]domain.QuizDefinition{sampleQuiz()}),
	}
	catalog := NewCatalog(client, loader, time.Minute)

	quiz, err := catalog.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Weight != 1 || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz from loader: %+v", quiz)
	}
	if loader.loads != 1 {
		t.Fatalf("expected loader called once, got %d", loader.loads)
	}

	// Second call should hit the Redis cache, loader not incremented.
	if _, err := catalog.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.loads != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.loads)
	}
}

func TestCatalogListRoundTrips(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader([]domain.QuizDefinition{sampleQuiz()}),
	}
	catalog := NewCatalog(newClient(mr), loader, time.Minute)

	quizzes, err := catalog.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != "quiz-1" {
		t.Fatalf("unexpected list: %+v", quizzes)
	}

	quizzes, err = catalog.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("unexpected cached list: %+v", quizzes)
	}
	if loader.lists != 1 {
		t.Fatalf("expected list loader once, got %d", loader.lists)
	}
}

type countingLoader struct {
	memory.CatalogLoader
	loads int
	lists int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	l.loads++
	return l.CatalogLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error) {
	l.lists++
	return l.CatalogLoader.ListQuizzes(ctx)
}

func sampleQuiz() domain.QuizDefinition {
	return domain.QuizDefinition{
		ID:     "quiz-1",
		Title:  "Modern Architecture",
		Weight: 1,
		Questions: []domain.Question{
			{
				ID:        "q1",
				Kind:      domain.KindSingleChoice,
				Prompt:    "Modern architecture often embraces minimalism.",
				Options:   []string{"True", "False"},
				AnswerKey: []string{"True"},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
