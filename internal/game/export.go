package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportResults appends a human-readable summary of a finished session
// to a text file.
func ExportResults(s *SessionCtx, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	correct := 0
	for _, h := range s.history {
		if h.IsCorrect {
			correct++
		}
	}
	accuracy := 0
	if len(s.questions) > 0 {
		accuracy = correct * 100 / len(s.questions)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("TriviaGenius Results - Session %s\n", s.Code))
	sb.WriteString(fmt.Sprintf("Finished: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Host: %s | Category: %s\n", s.personality, s.category))
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	sb.WriteString(fmt.Sprintf("Score: %d | Best streak: %d | Accuracy: %d%%\n\n", s.score, s.bestStreak, accuracy))

	byID := make(map[string]TriviaQuestion, len(s.questions))
	for _, q := range s.questions {
		byID[q.ID] = q
	}
	for i, h := range s.history {
		mark := "WRONG"
		if h.IsCorrect {
			mark = "RIGHT"
		}
		text := h.QuestionID
		if q, ok := byID[h.QuestionID]; ok {
			text = q.Question
		}
		sb.WriteString(fmt.Sprintf("%d. [%s] (%ds) %s\n", i+1, mark, h.TimeTaken, text))
	}
	if skipped := len(s.questions) - len(s.history); skipped > 0 {
		sb.WriteString(fmt.Sprintf("Skipped: %d\n", skipped))
	}
	sb.WriteString("\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
