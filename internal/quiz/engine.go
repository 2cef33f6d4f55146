package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/letsssgooo/quizquirk/internal/catalog"
	"github.com/letsssgooo/quizquirk/internal/stats"
)

// Engine ведёт одну попытку прохождения квиза.
type Engine struct {
	saver ResultSaver
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	mu        sync.Mutex
	state     State
	quiz      *catalog.Quiz
	index     int
	answers   []int
	selected  *int
	score     int
	startedAt time.Time
	result    *stats.Result

	observers    map[int]Observer
	nextObserver int
}

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger задаёт логгер. nil оставляет slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithIDGenerator задаёт генератор идентификаторов результатов.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// NewEngine создаёт движок в состоянии idle.
// saver получает результат при завершении; nil отключает сохранение.
func NewEngine(saver ResultSaver, opts ...Option) *Engine {
	e := &Engine{
		saver:     saver,
		log:       slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
		state:     StateIdle,
		observers: make(map[int]Observer),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start начинает новую попытку. Предыдущая попытка отбрасывается.
// Движок работает с копией квиза.
func (e *Engine) Start(quiz *catalog.Quiz) error {
	if err := checkQuiz(quiz); err != nil {
		return err
	}

	quiz = copyQuiz(quiz)

	e.mu.Lock()
	e.clear()
	e.quiz = quiz
	e.answers = make([]int, 0, len(quiz.Questions))
	e.startedAt = e.now()
	e.state = StateInProgress
	snap := e.snapshot()
	e.mu.Unlock()

	e.log.Debug("quiz started", "quiz", quiz.Title, "questions", len(quiz.Questions))
	e.notify(snap)

	return nil
}

// checkQuiz проверяет, что на каждый вопрос квиза можно ответить.
func checkQuiz(quiz *catalog.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("%w: quiz object is nil", ErrInvalidInput)
	}

	if len(quiz.Questions) == 0 {
		return fmt.Errorf("%w: quiz %q has no questions", ErrInvalidInput, quiz.Title)
	}

	for i, q := range quiz.Questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d of quiz %q has %d options, need at least 2",
				ErrInvalidInput, i, quiz.Title, len(q.Options))
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("%w: question %d of quiz %q has correct answer %d out of range",
				ErrInvalidInput, i, quiz.Title, q.CorrectAnswer)
		}
	}

	return nil
}

func copyQuiz(quiz *catalog.Quiz) *catalog.Quiz {
	out := *quiz
	out.Questions = make([]catalog.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		out.Questions[i] = copyQuestion(&quiz.Questions[i])
	}

	return &out
}

func copyQuestion(q *catalog.Question) catalog.Question {
	out := *q
	out.Options = make([]string, len(q.Options))
	copy(out.Options, q.Options)

	return out
}

// SelectAnswer подтверждает ответ на текущий вопрос.
// Повторный выбор после подтверждения ничего не делает.
func (e *Engine) SelectAnswer(optionIdx int) error {
	e.mu.Lock()

	switch e.state {
	case StateAwaitingNext:
		e.mu.Unlock()
		return nil
	case StateInProgress:
	default:
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: can not select answer in state %q", ErrInvalidInput, state)
	}

	question := &e.quiz.Questions[e.index]
	if optionIdx < 0 || optionIdx >= len(question.Options) {
		e.mu.Unlock()
		return fmt.Errorf("%w: option %d out of range [0, %d)", ErrInvalidInput, optionIdx, len(question.Options))
	}

	e.answers = append(e.answers, optionIdx)
	if question.IsCorrect(optionIdx) {
		e.score++
	}

	selected := optionIdx
	e.selected = &selected
	e.state = StateAwaitingNext
	snap := e.snapshot()
	e.mu.Unlock()

	e.log.Debug("answer selected", "question", snap.Index, "option", optionIdx, "score", snap.Score)
	e.notify(snap)

	return nil
}

// Advance переходит к следующему вопросу или завершает сессию.
// При завершении возвращает результат и передаёт его в ResultSaver.
// Если сохранить результат не удалось, сессия всё равно завершается,
// а ошибка оборачивает ErrPersist.
func (e *Engine) Advance(ctx context.Context) (*stats.Result, error) {
	e.mu.Lock()

	if e.state != StateAwaitingNext {
		state := e.state
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: can not advance in state %q", ErrInvalidInput, state)
	}

	if e.index+1 < len(e.quiz.Questions) {
		e.index++
		e.selected = nil
		e.state = StateInProgress
		snap := e.snapshot()
		e.mu.Unlock()

		e.notify(snap)

		return nil, nil
	}

	result := e.finish()
	snap := e.snapshot()
	e.mu.Unlock()

	e.log.Info("quiz completed",
		"quiz", result.QuizTitle,
		"score", result.Score,
		"total", result.TotalQuestions,
		"grade", result.Grade(),
		"time", stats.FormatDuration(result.TimeTaken),
	)

	var err error
	if e.saver != nil {
		if saveErr := e.saver.SaveResult(ctx, result); saveErr != nil {
			e.log.Error("can not save result", "quiz", result.QuizTitle, "err", saveErr)
			err = fmt.Errorf("%w: %w", ErrPersist, saveErr)
		}
	}

	e.notify(snap)

	return &result, err
}

func (e *Engine) finish() stats.Result {
	completedAt := e.now()

	result := stats.Result{
		ID:             e.newID(),
		QuizID:         e.quiz.ID,
		QuizTitle:      e.quiz.Title,
		Score:          e.score,
		TotalQuestions: len(e.quiz.Questions),
		CompletedAt:    completedAt.UTC(),
		TimeTaken:      completedAt.Sub(e.startedAt),
		Category:       e.quiz.Category,
	}

	e.result = &result
	e.state = StateComplete

	return result
}

// Reset отбрасывает сессию и возвращает движок в idle.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.clear()
	snap := e.snapshot()
	e.mu.Unlock()

	e.notify(snap)
}

func (e *Engine) clear() {
	e.state = StateIdle
	e.quiz = nil
	e.index = 0
	e.answers = nil
	e.selected = nil
	e.score = 0
	e.startedAt = time.Time{}
	e.result = nil
}

// Subscribe регистрирует наблюдателя. Возвращает функцию отписки.
func (e *Engine) Subscribe(fn Observer) (cancel func()) {
	e.mu.Lock()
	id := e.nextObserver
	e.nextObserver++
	e.observers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

func (e *Engine) notify(snap Snapshot) {
	e.mu.Lock()
	observers := make([]Observer, 0, len(e.observers))
	for i := 0; i < e.nextObserver; i++ {
		if fn, ok := e.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func (e *Engine) snapshot() Snapshot {
	snap := Snapshot{
		State:     e.state,
		Index:     e.index,
		Score:     e.score,
		Progress:  e.progress(),
		StartedAt: e.startedAt,
	}

	if e.quiz != nil {
		snap.QuizID = e.quiz.ID
		snap.Total = len(e.quiz.Questions)
	}

	if e.answers != nil {
		snap.Answers = make([]int, len(e.answers))
		copy(snap.Answers, e.answers)
	}

	if e.selected != nil {
		selected := *e.selected
		snap.Selected = &selected
	}

	return snap
}

// Snapshot возвращает копию текущего состояния.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot()
}

// State возвращает текущее состояние.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Quiz возвращает копию активного квиза или nil.
func (e *Engine) Quiz() *catalog.Quiz {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.quiz == nil {
		return nil
	}

	return copyQuiz(e.quiz)
}

// Index возвращает номер текущего вопроса (с нуля).
func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.index
}

// Score возвращает количество правильных ответов.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.score
}

// Answers возвращает копию подтверждённых ответов.
func (e *Engine) Answers() []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]int, len(e.answers))
	copy(out, e.answers)

	return out
}

// Selected возвращает выбранный ответ на текущий вопрос.
func (e *Engine) Selected() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected == nil {
		return 0, false
	}

	return *e.selected, true
}

// CurrentQuestion возвращает копию текущего вопроса. false, если сессии нет.
func (e *Engine) CurrentQuestion() (*catalog.Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.quiz == nil || e.index < 0 || e.index >= len(e.quiz.Questions) {
		return nil, false
	}

	q := copyQuestion(&e.quiz.Questions[e.index])

	return &q, true
}

// Progress возвращает (index+1)/total, 0 без активного квиза.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.progress()
}

func (e *Engine) progress() float64 {
	if e.quiz == nil || len(e.quiz.Questions) == 0 {
		return 0
	}

	return float64(e.index+1) / float64(len(e.quiz.Questions))
}

// Result возвращает результат завершённой сессии.
func (e *Engine) Result() (*stats.Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.result == nil {
		return nil, false
	}

	result := *e.result

	return &result, true
}
