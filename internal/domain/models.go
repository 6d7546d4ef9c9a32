package domain

import "time"

// Role distinguishes the two portal roles. Authorization checks in this core
// only ever test for RoleAdmin.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is the identity handed to the core by the session provider. The core
// never authenticates; it trusts what it is given.
type User struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// QuestionKind is a closed set; grading dispatches on it exhaustively.
type QuestionKind string

const (
	KindSingleChoice QuestionKind = "single-choice"
	KindMultiChoice  QuestionKind = "multi-choice"
	KindFreeText     QuestionKind = "free-text"
)

// Question models one quiz question. AnswerKey holds a single token for
// single-choice and free-text questions, or the expected unordered set of
// tokens for multi-choice.
type Question struct {
	ID        string       `json:"id"`
	Kind      QuestionKind `json:"kind"`
	Prompt    string       `json:"prompt"`
	Options   []string     `json:"options,omitempty"`
	AnswerKey []string     `json:"answerKey"`
}

// QuizDefinition is static per-deployment quiz configuration. Weights across
// all quizzes must sum to 1; this is validated once at startup.
type QuizDefinition struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Weight    float64    `json:"weight"`
	Questions []Question `json:"questions"`
}

// Answer carries one respondent's submitted value(s) for a single question.
// An empty Values slice means the question was left unanswered.
type Answer struct {
	QuestionID string   `json:"questionId"`
	Values     []string `json:"values"`
}

// Verdict is the per-question outcome used for UI highlighting.
type Verdict string

const (
	VerdictCorrect    Verdict = "correct"
	VerdictIncorrect  Verdict = "incorrect"
	VerdictUnanswered Verdict = "unanswered"
)

type QuestionVerdict struct {
	QuestionID string  `json:"questionId"`
	Verdict    Verdict `json:"verdict"`
}

// GradeResult is the outcome of grading one quiz attempt. Percent is always
// in [0,100]; a quiz with zero questions grades as 0.
type GradeResult struct {
	QuizID   string            `json:"quizId"`
	Percent  int               `json:"percent"`
	Correct  int               `json:"correct"`
	Total    int               `json:"total"`
	Verdicts []QuestionVerdict `json:"verdicts"`
}

// MaxAttempts caps accepted submissions per (user, quiz) pair.
const MaxAttempts = 3

// AttemptRecord is the per-user, per-quiz ledger entry. Attempts only ever
// increases; Best is monotonically non-decreasing.
type AttemptRecord struct {
	Best     int `json:"best"`
	Attempts int `json:"attempts"`
}

// Remaining reports how many accepted submissions are left.
func (r AttemptRecord) Remaining() int {
	if r.Attempts >= MaxAttempts {
		return 0
	}
	return MaxAttempts - r.Attempts
}

// Exhausted reports whether the pair reached its terminal state.
func (r AttemptRecord) Exhausted() bool {
	return r.Attempts >= MaxAttempts
}

// SubmissionResult describes one accepted submission. Attempt and Best carry
// the post-increment attempt number and post-update best score.
type SubmissionResult struct {
	QuizID    string `json:"quizId"`
	Score     int    `json:"score"`
	Attempt   int    `json:"attempt"`
	Best      int    `json:"best"`
	Remaining int    `json:"remaining"`
}

// QuizOpenState maps quiz IDs to their admin-controlled open flag. Quizzes
// without an entry are open.
type QuizOpenState map[string]bool

func (s QuizOpenState) IsOpen(quizID string) bool {
	open, ok := s[quizID]
	if !ok {
		return true
	}
	return open
}

// Report is one immutable attempt-history entry.
type Report struct {
	Email       string    `json:"email"`
	QuizID      string    `json:"quizId"`
	Attempt     int       `json:"attempt"`
	Score       int       `json:"score"`
	Best        int       `json:"best"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ReportFilter narrows a report listing to one user and/or quiz. Zero values
// match everything.
type ReportFilter struct {
	Email  string
	QuizID string
}

func (f ReportFilter) Matches(r Report) bool {
	if f.Email != "" && r.Email != f.Email {
		return false
	}
	if f.QuizID != "" && r.QuizID != f.QuizID {
		return false
	}
	return true
}

// QuizProgress is the per-quiz slice of a progress snapshot.
type QuizProgress struct {
	QuizID    string `json:"quizId"`
	Title     string `json:"title"`
	Best      int    `json:"best"`
	Attempts  int    `json:"attempts"`
	Remaining int    `json:"remaining"`
}

// ProgressSnapshot is what the portal's progress widgets render: the weighted
// global percentage, per-quiz state, and the stepper position (login and intro
// always count, each quiz with best >= 50 counts, global >= 80 completes).
type ProgressSnapshot struct {
	Email          string         `json:"email"`
	Global         int            `json:"global"`
	Quizzes        []QuizProgress `json:"quizzes"`
	CompletedSteps int            `json:"completedSteps"`
	TotalSteps     int            `json:"totalSteps"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
