package stats

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"
)

// ExportCSV экспортирует историю результатов в CSV, сначала самые новые.
func (s *Store) ExportCSV(ctx context.Context) ([]byte, error) {
	results := s.GetResults(ctx)

	rows := make([][]string, len(results)+1)
	rows[0] = []string{
		"CompletedAt",
		"QuizID",
		"QuizTitle",
		"Category",
		"Score",
		"TotalQuestions",
		"Percentage",
		"Grade",
		"TimeTaken",
	}
	for i, r := range results {
		rows[i+1] = []string{
			r.CompletedAt.Format(time.RFC3339),
			r.QuizID,
			r.QuizTitle,
			r.Category.DisplayName(),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d", r.TotalQuestions),
			fmt.Sprintf("%.1f", r.Percentage()),
			r.Grade(),
			fmt.Sprintf("%v", r.TimeTaken.Seconds()),
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := w.WriteAll(rows)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
