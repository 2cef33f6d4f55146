package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/letsssgooo/quizquirk/internal/catalog"
	"github.com/letsssgooo/quizquirk/internal/storage"
)

// Ключи в key/value хранилище
const (
	KeyResults = "results"
	KeyStats   = "stats"
)

// Store хранит журнал результатов и статистику поверх storage.Storage.
type Store struct {
	st  storage.Storage
	log *slog.Logger
	mu  sync.Mutex
}

// NewStore создаёт Store. Если log равен nil, используется slog.Default().
func NewStore(st storage.Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		st:  st,
		log: log,
	}
}

// Close закрывает хранилище.
func (s *Store) Close() error {
	return s.st.Close()
}

// SaveResult добавляет результат в журнал и пересчитывает статистику.
// Повторное сохранение того же результата создаёт новую запись.
// Если журнал или статистику не удалось прочитать, ничего не записывается.
func (s *Store) SaveResult(ctx context.Context, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []Result
	if err := s.read(ctx, KeyResults, &results); err != nil {
		return err
	}

	var stats UserStats
	if err := s.read(ctx, KeyStats, &stats); err != nil {
		return err
	}

	results = append(results, result)
	if err := s.save(ctx, KeyResults, results); err != nil {
		return err
	}

	stats.TotalQuizzesTaken++
	stats.TotalQuestionsAnswered += result.TotalQuestions
	stats.TotalCorrectAnswers += result.Score
	stats.AverageScore = averageScore(results)
	stats.FavoriteCategory = favoriteCategory(results)

	s.log.Debug("result saved",
		"quiz", result.QuizTitle,
		"score", result.Score,
		"total", result.TotalQuestions,
		"results", len(results),
	)

	return s.save(ctx, KeyStats, stats)
}

// Rebuild заново вычисляет статистику по журналу результатов и сохраняет её.
// Используется для восстановления после сбоя между записями журнала и статистики.
func (s *Store) Rebuild(ctx context.Context) (UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []Result
	if err := s.read(ctx, KeyResults, &results); err != nil {
		return UserStats{}, err
	}

	stats := UserStats{
		TotalQuizzesTaken: len(results),
		AverageScore:      averageScore(results),
		FavoriteCategory:  favoriteCategory(results),
	}
	for _, r := range results {
		stats.TotalQuestionsAnswered += r.TotalQuestions
		stats.TotalCorrectAnswers += r.Score
	}

	if err := s.save(ctx, KeyStats, stats); err != nil {
		return UserStats{}, err
	}

	return stats, nil
}

// GetResults возвращает все результаты, сначала самые новые.
func (s *Store) GetResults(ctx context.Context) []Result {
	s.mu.Lock()
	results := s.loadResults(ctx)
	s.mu.Unlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})

	return results
}

// GetStats возвращает сохранённую статистику или нулевую, если её нет.
func (s *Store) GetStats(ctx context.Context) UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadStats(ctx)
}

// DeleteAll удаляет журнал результатов и статистику.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.st.Remove(ctx, KeyResults); err != nil {
		return fmt.Errorf("can not remove %s: %w", KeyResults, err)
	}

	if err := s.st.Remove(ctx, KeyStats); err != nil {
		return fmt.Errorf("can not remove %s: %w", KeyStats, err)
	}

	s.log.Info("history deleted")

	return nil
}

func (s *Store) loadResults(ctx context.Context) []Result {
	var results []Result
	if !s.load(ctx, KeyResults, &results) || results == nil {
		return []Result{}
	}

	return results
}

func (s *Store) loadStats(ctx context.Context) UserStats {
	var stats UserStats
	if !s.load(ctx, KeyStats, &stats) {
		return UserStats{}
	}

	return stats
}

// load читает значение для отображения. Ошибки хранилища и повреждённые
// данные считаются отсутствием данных.
func (s *Store) load(ctx context.Context, key string, v any) bool {
	if err := s.read(ctx, key, v); err != nil {
		s.log.Warn("can not load value, using empty value", "key", key, "err", err)
		return false
	}

	return true
}

// read читает и декодирует значение. Отсутствие ключа не ошибка, v не меняется.
func (s *Store) read(ctx context.Context, key string, v any) error {
	data, err := s.st.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("can not read %s: %w", key, err)
	}

	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("can not decode %s: %w", key, err)
	}

	return nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("can not encode %s: %w", key, err)
	}

	if err = s.st.Set(ctx, key, data); err != nil {
		s.log.Error("can not persist value", "key", key, "err", err)
		return fmt.Errorf("can not persist %s: %w", key, err)
	}

	return nil
}

// averageScore считает средний процент по всему журналу заново.
func averageScore(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}

	total := 0.0
	for i := range results {
		total += results[i].Percentage()
	}

	return total / float64(len(results))
}

// favoriteCategory возвращает категорию с наибольшим числом результатов.
// Журнал просматривается от старых к новым; при равенстве побеждает
// категория, первой достигшая максимума.
func favoriteCategory(results []Result) *catalog.Category {
	if len(results) == 0 {
		return nil
	}

	counts := make(map[catalog.Category]int)

	var best catalog.Category
	bestCount := 0

	for _, r := range results {
		counts[r.Category]++
		if counts[r.Category] > bestCount {
			best = r.Category
			bestCount = counts[r.Category]
		}
	}

	return &best
}
