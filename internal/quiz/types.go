package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/letsssgooo/quizquirk/internal/stats"
)

// Ошибки движка
var (
	// ErrInvalidInput: неверный аргумент или вызов в неподходящем состоянии.
	// Состояние сессии при этом не меняется.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersist: сессия завершена, но результат не удалось сохранить.
	ErrPersist = errors.New("can not persist result")
)

// State определяет состояние сессии.
type State string

const (
	StateIdle         State = "idle"
	StateInProgress   State = "in_progress"
	StateAwaitingNext State = "awaiting_next"
	StateComplete     State = "complete"
)

// ResultSaver принимает результат завершённой сессии.
type ResultSaver interface {
	SaveResult(ctx context.Context, result stats.Result) error
}

// Snapshot содержит копию состояния сессии для наблюдателей.
type Snapshot struct {
	State     State
	QuizID    string
	Index     int
	Total     int
	Score     int
	Answers   []int
	Selected  *int
	Progress  float64
	StartedAt time.Time
}

// Observer получает снимок после каждого изменения сессии.
type Observer func(Snapshot)

// Option настраивает Engine.
type Option func(*Engine)
