package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/letsssgooo/quizquirk/internal/catalog"
	"github.com/letsssgooo/quizquirk/internal/stats"
	"github.com/letsssgooo/quizquirk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock возвращает заданное время и сдвигается вручную.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Add(d time.Duration) { c.t = c.t.Add(d) }

// recordingSaver запоминает сохранённые результаты.
type recordingSaver struct {
	results []stats.Result
	err     error
}

func (s *recordingSaver) SaveResult(_ context.Context, result stats.Result) error {
	if s.err != nil {
		return s.err
	}

	s.results = append(s.results, result)

	return nil
}

// newQuiz создаёт квиз, где правильный ответ на каждый вопрос равен correct[i].
func newQuiz(correct ...int) *catalog.Quiz {
	quiz := &catalog.Quiz{
		ID:         "quiz-1",
		Title:      "Test Quiz",
		Category:   catalog.CategorySports,
		Difficulty: catalog.DifficultyEasy,
	}

	for i, c := range correct {
		quiz.Questions = append(quiz.Questions, catalog.Question{
			ID:            string(rune('a' + i)),
			Text:          "Question?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: c,
			Explanation:   "Because.",
		})
	}

	return quiz
}

func newTestEngine(saver ResultSaver) (*Engine, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 18, 9, 30, 0, 500, time.UTC)}
	e := NewEngine(saver,
		WithClock(clock.Now),
		WithIDGenerator(func() string { return "result-1" }),
	)

	return e, clock
}

func TestNewEngine_Idle(t *testing.T) {
	e, _ := newTestEngine(nil)

	assert.Equal(t, StateIdle, e.State())
	assert.Nil(t, e.Quiz())
	assert.Equal(t, 0.0, e.Progress())

	q, ok := e.CurrentQuestion()
	assert.False(t, ok)
	assert.Nil(t, q)

	_, ok = e.Result()
	assert.False(t, ok)
}

func TestStart(t *testing.T) {
	e, clock := newTestEngine(nil)
	quiz := newQuiz(0, 1)

	require.NoError(t, e.Start(quiz))

	assert.Equal(t, StateInProgress, e.State())
	assert.Equal(t, quiz, e.Quiz())
	assert.NotSame(t, quiz, e.Quiz())
	assert.Equal(t, 0, e.Index())
	assert.Equal(t, 0, e.Score())
	assert.Empty(t, e.Answers())
	_, ok := e.Selected()
	assert.False(t, ok)
	assert.Equal(t, clock.Now(), e.Snapshot().StartedAt)

	q, ok := e.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "a", q.ID)
}

func TestStart_Invalid(t *testing.T) {
	e, _ := newTestEngine(nil)

	err := e.Start(nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = e.Start(&catalog.Quiz{Title: "Empty"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, StateIdle, e.State())

	oneOption := newQuiz(0, 0)
	oneOption.Questions[1].Options = []string{"Only"}
	err = e.Start(oneOption)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, StateIdle, e.State())

	badCorrect := newQuiz(0, 4)
	err = e.Start(badCorrect)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	negative := newQuiz(-1)
	err = e.Start(negative)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Nil(t, e.Quiz())
}

func TestStart_CopiesQuiz(t *testing.T) {
	e, _ := newTestEngine(nil)
	quiz := newQuiz(1, 1)

	require.NoError(t, e.Start(quiz))

	quiz.Title = "Changed"
	quiz.Questions[0].CorrectAnswer = 0
	quiz.Questions[0].Options[1] = "changed"
	quiz.Questions = quiz.Questions[:1]

	q, ok := e.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "B", q.Options[1])
	q.Options[1] = "changed again"

	require.NoError(t, e.SelectAnswer(1))
	assert.Equal(t, 1, e.Score())

	_, err := e.Advance(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.SelectAnswer(1))

	result, err := e.Advance(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Test Quiz", result.QuizTitle)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 2, result.TotalQuestions)
}

func TestWithLogger_Nil(t *testing.T) {
	e := NewEngine(nil, WithLogger(nil))

	assert.NotPanics(t, func() {
		require.NoError(t, e.Start(newQuiz(0)))
		require.NoError(t, e.SelectAnswer(0))
		_, err := e.Advance(context.Background())
		require.NoError(t, err)
	})
}

func TestStart_RestartsSession(t *testing.T) {
	e, _ := newTestEngine(nil)

	require.NoError(t, e.Start(newQuiz(0, 0)))
	require.NoError(t, e.SelectAnswer(0))
	_, err := e.Advance(context.Background())
	require.NoError(t, err)

	other := newQuiz(1, 1, 1)
	require.NoError(t, e.Start(other))

	assert.Equal(t, StateInProgress, e.State())
	assert.Equal(t, other, e.Quiz())
	assert.Equal(t, 0, e.Index())
	assert.Equal(t, 0, e.Score())
	assert.Empty(t, e.Answers())
}

func TestFullRun(t *testing.T) {
	saver := &recordingSaver{}
	e, clock := newTestEngine(saver)
	ctx := context.Background()

	quiz := newQuiz(0, 1, 2, 3, 0)
	answers := []int{0, 1, 0, 3, 2}

	require.NoError(t, e.Start(quiz))

	for i, answer := range answers {
		assert.Equal(t, i, e.Index())

		require.NoError(t, e.SelectAnswer(answer))
		assert.Equal(t, StateAwaitingNext, e.State())

		selected, ok := e.Selected()
		require.True(t, ok)
		assert.Equal(t, answer, selected)

		clock.Add(10 * time.Second)

		result, err := e.Advance(ctx)
		require.NoError(t, err)

		if i < len(answers)-1 {
			assert.Nil(t, result)
			assert.Equal(t, StateInProgress, e.State())
			_, ok = e.Selected()
			assert.False(t, ok)
		} else {
			require.NotNil(t, result)
		}
	}

	assert.Equal(t, StateComplete, e.State())
	assert.Equal(t, len(quiz.Questions)-1, e.Index())
	assert.Equal(t, 3, e.Score())
	assert.Equal(t, answers, e.Answers())

	require.Len(t, saver.results, 1)
	result := saver.results[0]
	assert.Equal(t, "result-1", result.ID)
	assert.Equal(t, quiz.ID, result.QuizID)
	assert.Equal(t, quiz.Title, result.QuizTitle)
	assert.Equal(t, catalog.CategorySports, result.Category)
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 50*time.Second, result.TimeTaken)
	assert.Equal(t, clock.Now(), result.CompletedAt)
	assert.Equal(t, 60.0, result.Percentage())
	assert.Equal(t, stats.GradeGood, result.Grade())

	stored, ok := e.Result()
	require.True(t, ok)
	assert.Equal(t, result, *stored)
}

func TestProgress_StrictlyIncreasing(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()

	quiz := newQuiz(0, 0, 0, 0)
	require.NoError(t, e.Start(quiz))

	prev := 0.0
	for i := range quiz.Questions {
		progress := e.Progress()
		assert.Greater(t, progress, prev)
		if i < len(quiz.Questions)-1 {
			assert.Less(t, progress, 1.0)
		}
		prev = progress

		require.NoError(t, e.SelectAnswer(0))
		_, err := e.Advance(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, e.Progress())
}

func TestSingleQuestionQuiz(t *testing.T) {
	saver := &recordingSaver{}
	e, _ := newTestEngine(saver)

	require.NoError(t, e.Start(newQuiz(2)))
	assert.Equal(t, 1.0, e.Progress())

	require.NoError(t, e.SelectAnswer(2))

	result, err := e.Advance(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, StateComplete, e.State())
	assert.Equal(t, 1, result.Score)
	assert.Len(t, saver.results, 1)
}

func TestSelectAnswer_OutOfRange(t *testing.T) {
	e, _ := newTestEngine(nil)
	require.NoError(t, e.Start(newQuiz(1, 1)))

	for _, idx := range []int{5, 4, -1} {
		err := e.SelectAnswer(idx)
		assert.True(t, errors.Is(err, ErrInvalidInput), "option %d", idx)
	}

	assert.Equal(t, StateInProgress, e.State())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 0, e.Index())
	assert.Empty(t, e.Answers())
	_, ok := e.Selected()
	assert.False(t, ok)

	require.NoError(t, e.SelectAnswer(3))
	assert.Equal(t, []int{3}, e.Answers())
}

func TestSelectAnswer_RepeatIsNoop(t *testing.T) {
	e, _ := newTestEngine(nil)
	require.NoError(t, e.Start(newQuiz(1, 1)))

	require.NoError(t, e.SelectAnswer(1))
	require.NoError(t, e.SelectAnswer(0))
	require.NoError(t, e.SelectAnswer(1))
	require.NoError(t, e.SelectAnswer(42))

	assert.Equal(t, 1, e.Score())
	assert.Equal(t, []int{1}, e.Answers())
	selected, ok := e.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, selected)
}

func TestWrongState(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(nil)

	err := e.SelectAnswer(0)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = e.Advance(ctx)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, e.Start(newQuiz(0)))

	_, err = e.Advance(ctx)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, StateInProgress, e.State())

	require.NoError(t, e.SelectAnswer(0))
	_, err = e.Advance(ctx)
	require.NoError(t, err)
	require.Equal(t, StateComplete, e.State())

	err = e.SelectAnswer(0)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = e.Advance(ctx)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.Equal(t, StateComplete, e.State())
	assert.Equal(t, 1, e.Score())
}

func TestReset_Idempotent(t *testing.T) {
	e, _ := newTestEngine(nil)
	require.NoError(t, e.Start(newQuiz(0, 1)))
	require.NoError(t, e.SelectAnswer(0))

	e.Reset()
	once := e.Snapshot()

	e.Reset()
	twice := e.Snapshot()

	assert.Equal(t, once, twice)
	assert.Equal(t, StateIdle, twice.State)
	assert.Equal(t, 0, twice.Score)
	assert.Equal(t, 0, twice.Index)
	assert.Nil(t, twice.Answers)
	assert.Nil(t, twice.Selected)
	assert.Nil(t, e.Quiz())
}

func TestAdvance_PersistFailure(t *testing.T) {
	errDisk := errors.New("disk full")
	saver := &recordingSaver{err: errDisk}
	e, _ := newTestEngine(saver)

	require.NoError(t, e.Start(newQuiz(0)))
	require.NoError(t, e.SelectAnswer(0))

	result, err := e.Advance(context.Background())
	require.NotNil(t, result)
	assert.True(t, errors.Is(err, ErrPersist))
	assert.True(t, errors.Is(err, errDisk))
	assert.Equal(t, StateComplete, e.State())
	assert.Equal(t, 1, result.Score)
}

func TestEngine_WithStatsStore(t *testing.T) {
	ctx := context.Background()
	store := stats.NewStore(storage.NewMemoryStorage(), nil)
	e, clock := newTestEngine(store)

	categories := []catalog.Category{catalog.CategorySports, catalog.CategoryHistory, catalog.CategorySports}
	for _, category := range categories {
		quiz := newQuiz(0, 0)
		quiz.Category = category

		require.NoError(t, e.Start(quiz))
		require.NoError(t, e.SelectAnswer(0))
		_, err := e.Advance(ctx)
		require.NoError(t, err)
		require.NoError(t, e.SelectAnswer(1))
		clock.Add(time.Minute)
		_, err = e.Advance(ctx)
		require.NoError(t, err)
	}

	results := store.GetResults(ctx)
	require.Len(t, results, 3)
	assert.Equal(t, catalog.CategorySports, results[0].Category)

	summary := store.GetStats(ctx)
	assert.Equal(t, 3, summary.TotalQuizzesTaken)
	assert.Equal(t, 6, summary.TotalQuestionsAnswered)
	assert.Equal(t, 3, summary.TotalCorrectAnswers)
	assert.Equal(t, 50.0, summary.AverageScore)
	require.NotNil(t, summary.FavoriteCategory)
	assert.Equal(t, catalog.CategorySports, *summary.FavoriteCategory)
}

func TestSubscribe(t *testing.T) {
	e, _ := newTestEngine(nil)

	var states []State
	cancel := e.Subscribe(func(s Snapshot) {
		states = append(states, s.State)
	})

	var last Snapshot
	e.Subscribe(func(s Snapshot) {
		last = s
	})

	require.NoError(t, e.Start(newQuiz(1, 0)))
	require.NoError(t, e.SelectAnswer(1))

	assert.Equal(t, []State{StateInProgress, StateAwaitingNext}, states)
	assert.Equal(t, 1, last.Score)
	assert.Equal(t, []int{1}, last.Answers)
	require.NotNil(t, last.Selected)
	assert.Equal(t, 1, *last.Selected)
	assert.Equal(t, 0.5, last.Progress)
	assert.Equal(t, 2, last.Total)

	// отклонённый вызов не уведомляет
	require.Error(t, e.Start(nil))
	cancel()

	_, err := e.Advance(context.Background())
	require.NoError(t, err)

	assert.Len(t, states, 2)
	assert.Equal(t, StateInProgress, last.State)
	assert.Equal(t, 1, last.Index)
}

func TestSelectAnswerByLetter(t *testing.T) {
	e, _ := newTestEngine(nil)
	require.NoError(t, e.Start(newQuiz(2)))

	err := e.SelectAnswerByLetter("Z")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = e.SelectAnswerByLetter("E")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, e.SelectAnswerByLetter(" c "))
	assert.Equal(t, 1, e.Score())
}

func TestLetters(t *testing.T) {
	idx, ok := LetterToIndex("b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = LetterToIndex("G")
	assert.False(t, ok)

	assert.Equal(t, "D", IndexToLetter(3))
	assert.Equal(t, "", IndexToLetter(6))
	assert.Equal(t, "", IndexToLetter(-1))
}
