package app

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/AyeleBedada/trial-LMS/internal/grading"
)

// ScoreStore persists per-user attempt records (in-memory, Redis, etc).
// A record is always written as a unit, never field by field.
type ScoreStore interface {
	GetRecord(ctx context.Context, email, quizID string) (domain.AttemptRecord, bool, error)
	PutRecord(ctx context.Context, email, quizID string, rec domain.AttemptRecord) error
}

// GateStore persists the deployment-wide quiz open flags.
type GateStore interface {
	GetOpenState(ctx context.Context) (domain.QuizOpenState, error)
	PutOpenState(ctx context.Context, state domain.QuizOpenState) error
}

// ReportLog keeps the bounded, newest-first attempt history.
type ReportLog interface {
	Append(ctx context.Context, report domain.Report) error
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)
}

// QuizCatalog loads quiz definitions (from cache/backing store).
type QuizCatalog interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizDefinition, error)
}

// AssessmentService contains the assessment use cases: live grading, gated
// submission with the attempt budget, weighted progress aggregation, the
// admin access gate, and the report history.
//
// Known race, accepted for the single-user-per-session demo scope: the
// read-modify-write in Submit is not atomic against a concurrent submission
// for the same (user, quiz) from a second session. Last writer wins.
type AssessmentService struct {
	scores  ScoreStore
	gate    GateStore
	reports ReportLog
	catalog QuizCatalog
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*progressSession
}

func NewAssessmentService(scores ScoreStore, gate GateStore, reports ReportLog, catalog QuizCatalog) *AssessmentService {
	return &AssessmentService{
		scores:   scores,
		gate:     gate,
		reports:  reports,
		catalog:  catalog,
		now:      time.Now,
		sessions: make(map[string]*progressSession),
	}
}

// NewAssessmentServiceWithClock is test-only for deterministic timestamps.
func NewAssessmentServiceWithClock(scores ScoreStore, gate GateStore, reports ReportLog, catalog QuizCatalog, now func() time.Time) *AssessmentService {
	s := NewAssessmentService(scores, gate, reports, catalog)
	s.now = now
	return s
}

// ValidateCatalog checks the weight invariant across all known quizzes.
// Called once at startup; a violation is fatal, not a per-call concern.
func (s *AssessmentService) ValidateCatalog(ctx context.Context) error {
	quizzes, err := s.catalog.ListQuizzes(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(quizzes) == 0 {
		return fmt.Errorf("catalog validation: no quizzes configured")
	}
	sum := 0.0
	seen := make(map[string]struct{}, len(quizzes))
	for _, quiz := range quizzes {
		if _, dup := seen[quiz.ID]; dup {
			return fmt.Errorf("catalog validation: duplicate quiz id %q", quiz.ID)
		}
		seen[quiz.ID] = struct{}{}
		if quiz.Weight < 0 || quiz.Weight > 1 {
			return fmt.Errorf("catalog validation: quiz %q weight %v out of range", quiz.ID, quiz.Weight)
		}
		sum += quiz.Weight
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("catalog validation: quiz weights sum to %v, want 1", sum)
	}
	return nil
}

// Grade computes the live percentage and per-question verdicts for one quiz
// attempt. It never touches the ledger and is always permitted, even while
// the quiz is gated closed.
func (s *AssessmentService) Grade(ctx context.Context, quizID string, answers []domain.Answer) (domain.GradeResult, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	return grading.Grade(quiz, answers), nil
}

// Submit grades and records one attempt. Preconditions, in order: the quiz
// must be open, and the attempt budget must not be exhausted. On acceptance
// the updated record is persisted before the report entry is appended; the
// report carries the post-increment attempt number and post-update best.
func (s *AssessmentService) Submit(ctx context.Context, user domain.User, quizID string, answers []domain.Answer) (domain.SubmissionResult, error) {
	if user.Email == "" {
		return domain.SubmissionResult{}, domain.ErrUnauthenticated
	}
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	if !s.isOpen(ctx, quizID) {
		return domain.SubmissionResult{}, domain.ErrQuizClosed
	}

	rec := s.record(ctx, user.Email, quizID)
	if rec.Exhausted() {
		return domain.SubmissionResult{}, domain.ErrAttemptsExhausted
	}

	graded := grading.Grade(quiz, answers)
	updated := domain.AttemptRecord{
		Best:     rec.Best,
		Attempts: rec.Attempts + 1,
	}
	if graded.Percent > updated.Best {
		updated.Best = graded.Percent
	}

	// A failed write means the submission did not happen: attempts must not
	// silently advance.
	if err := s.scores.PutRecord(ctx, user.Email, quizID, updated); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("persist attempt: %w", err)
	}

	report := domain.Report{
		Email:       user.Email,
		QuizID:      quizID,
		Attempt:     updated.Attempts,
		Score:       graded.Percent,
		Best:        updated.Best,
		SubmittedAt: s.now(),
	}
	if err := s.reports.Append(ctx, report); err != nil {
		// The attempt itself is already recorded; surface the history failure.
		return domain.SubmissionResult{}, fmt.Errorf("append report: %w", err)
	}

	result := domain.SubmissionResult{
		QuizID:    quizID,
		Score:     graded.Percent,
		Attempt:   updated.Attempts,
		Best:      updated.Best,
		Remaining: updated.Remaining(),
	}
	s.publishProgress(ctx, user.Email)
	return result, nil
}

// GlobalPercent is the weighted sum of persisted best scores across all known
// quizzes, rounded once at the end.
func (s *AssessmentService) GlobalPercent(ctx context.Context, email string) (int, error) {
	return s.weightedPercent(ctx, email, "", 0)
}

// ProjectedPercent answers "what would my global score become": it substitutes
// one quiz's best with a provisional, unsubmitted percent without mutating any
// stored record.
func (s *AssessmentService) ProjectedPercent(ctx context.Context, email, quizID string, provisional int) (int, error) {
	return s.weightedPercent(ctx, email, quizID, provisional)
}

func (s *AssessmentService) weightedPercent(ctx context.Context, email, overrideQuiz string, override int) (int, error) {
	quizzes, err := s.catalog.ListQuizzes(ctx)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, quiz := range quizzes {
		best := s.record(ctx, email, quiz.ID).Best
		if quiz.ID == overrideQuiz {
			best = override
		}
		sum += float64(best) * quiz.Weight
	}
	return int(math.Round(sum)), nil
}

// IsOpen reports whether submissions for the quiz are currently accepted.
// Unknown quizzes default to open.
func (s *AssessmentService) IsOpen(ctx context.Context, quizID string) bool {
	return s.isOpen(ctx, quizID)
}

// OpenState returns the full gate map for the admin console.
func (s *AssessmentService) OpenState(ctx context.Context) (domain.QuizOpenState, error) {
	state, err := s.gate.GetOpenState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open state: %w", err)
	}
	if state == nil {
		state = domain.QuizOpenState{}
	}
	return state, nil
}

// SetOpen flips a quiz's gate flag. Admin-only; any other caller gets
// ErrUnauthorized and the stored state is untouched.
func (s *AssessmentService) SetOpen(ctx context.Context, caller domain.User, quizID string, open bool) error {
	if caller.Role != domain.RoleAdmin {
		return domain.ErrUnauthorized
	}
	state, err := s.gate.GetOpenState(ctx)
	if err != nil || state == nil {
		state = domain.QuizOpenState{}
	}
	state[quizID] = open
	if err := s.gate.PutOpenState(ctx, state); err != nil {
		return fmt.Errorf("persist open state: %w", err)
	}
	return nil
}

// Reports lists retained attempt history, newest first.
func (s *AssessmentService) Reports(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	return s.reports.List(ctx, filter)
}

// Progress builds the snapshot the portal's widgets render.
func (s *AssessmentService) Progress(ctx context.Context, email string) (domain.ProgressSnapshot, error) {
	quizzes, err := s.catalog.ListQuizzes(ctx)
	if err != nil {
		return domain.ProgressSnapshot{}, err
	}

	snapshot := domain.ProgressSnapshot{
		Email:     email,
		UpdatedAt: s.now(),
		// Login and intro pages, one step per quiz, one for completion.
		TotalSteps: len(quizzes) + 3,
	}
	completed := 2 // login + intro
	sum := 0.0
	for _, quiz := range quizzes {
		rec := s.record(ctx, email, quiz.ID)
		snapshot.Quizzes = append(snapshot.Quizzes, domain.QuizProgress{
			QuizID:    quiz.ID,
			Title:     quiz.Title,
			Best:      rec.Best,
			Attempts:  rec.Attempts,
			Remaining: rec.Remaining(),
		})
		if rec.Best >= 50 {
			completed++
		}
		sum += float64(rec.Best) * quiz.Weight
	}
	snapshot.Global = int(math.Round(sum))
	if snapshot.Global >= 80 {
		completed++
	}
	snapshot.CompletedSteps = completed
	return snapshot, nil
}

// Subscribe returns a channel that receives progress snapshots for a user,
// seeded with the current one. The caller must invoke the returned cancel
// function to avoid leaks.
func (s *AssessmentService) Subscribe(ctx context.Context, email string) (<-chan domain.ProgressSnapshot, func(), error) {
	initial, err := s.Progress(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	session := s.session(email)
	ch, cancelSub := session.subscribe(initial)
	cancel := func() {
		cancelSub()
		s.dropIfIdle(email)
	}
	return ch, cancel, nil
}

// record reads one ledger entry; a failed or absent read yields the lazy
// default {best:0, attempts:0}.
func (s *AssessmentService) record(ctx context.Context, email, quizID string) domain.AttemptRecord {
	rec, ok, err := s.scores.GetRecord(ctx, email, quizID)
	if err != nil || !ok {
		return domain.AttemptRecord{}
	}
	return rec
}

// isOpen consults the gate; a failed read falls back to the default (open).
func (s *AssessmentService) isOpen(ctx context.Context, quizID string) bool {
	state, err := s.gate.GetOpenState(ctx)
	if err != nil {
		return true
	}
	return state.IsOpen(quizID)
}

func (s *AssessmentService) publishProgress(ctx context.Context, email string) {
	s.mu.RLock()
	session, ok := s.sessions[email]
	s.mu.RUnlock()
	if !ok {
		return
	}
	snapshot, err := s.Progress(ctx, email)
	if err != nil {
		return
	}
	session.broadcast(snapshot)
}

func (s *AssessmentService) session(email string) *progressSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[email]
	if !ok {
		session = newProgressSession(email)
		s.sessions[email] = session
	}
	return session
}

func (s *AssessmentService) dropIfIdle(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[email]
	if ok && session.isIdle() {
		delete(s.sessions, email)
	}
}

// progressSession fans out snapshot updates to a user's open pages.
type progressSession struct {
	email       string
	mu          sync.Mutex
	subscribers map[chan domain.ProgressSnapshot]struct{}
}

func newProgressSession(email string) *progressSession {
	return &progressSession{
		email:       email,
		subscribers: make(map[chan domain.ProgressSnapshot]struct{}),
	}
}

func (p *progressSession) subscribe(initial domain.ProgressSnapshot) (<-chan domain.ProgressSnapshot, func()) {
	ch := make(chan domain.ProgressSnapshot, 8)

	p.mu.Lock()
	p.subscribers[ch] = struct{}{}
	p.mu.Unlock()

	ch <- initial

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

func (p *progressSession) broadcast(snapshot domain.ProgressSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale update so slow pages never block the ledger.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (p *progressSession) isIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscribers) == 0
}
