// Package ollama is a local-model fallback provider. It covers
// question generation and host commentary through the Ollama chat API;
// speech synthesis is unavailable, so the game runs silent.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizhost/triviagenius/internal/game"
)

type Client struct {
	Host  string
	Model string
	http  *http.Client
}

func New(host, model string) *Client {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &Client{Host: strings.TrimRight(host, "/"), Model: model, http: &http.Client{Timeout: 60 * time.Second}}
}

func (c *Client) GenerateQuestions(ctx context.Context, category string, count int) ([]game.TriviaQuestion, error) {
	system := `You write trivia questions. Respond with a JSON array only. Each element has the keys: id, question, options (exactly 4 strings), correctAnswer (must equal one of the options), category, difficulty (Easy, Medium or Hard), explanation.`
	prompt := fmt.Sprintf("Generate %d unique and challenging trivia questions about %s. Return them as a JSON array.", count, category)
	text, err := c.chat(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	var raw []game.TriviaQuestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse trivia questions: %w", err)
	}
	questions := make([]game.TriviaQuestion, 0, count)
	for _, q := range raw {
		if !q.Valid() {
			continue
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		questions = append(questions, q)
	}
	if len(questions) < count {
		return nil, fmt.Errorf("got %d usable questions, want %d", len(questions), count)
	}
	return questions[:count], nil
}

func (c *Client) HostCommentary(ctx context.Context, personality game.Personality, contextText string, score, streak int) (game.Commentary, error) {
	system := "You are a trivia game host. Respond with a JSON object only, with the keys 'message' and 'expression' (one of: idle, happy, thinking, shocked, roast)."
	prompt := fmt.Sprintf(`Your personality: %s.
Current Player Stats: Score %d, Streak %d.
Context: %s

Respond to the player's recent action (correct/incorrect/start/end). Keep it short (1-2 sentences).`,
		personality, score, streak, contextText)

	text, err := c.chat(ctx, system, prompt)
	if err != nil {
		return game.Commentary{}, err
	}
	var out game.Commentary
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return game.Commentary{}, fmt.Errorf("failed to parse commentary: %w", err)
	}
	return out, nil
}

// SynthesizeSpeech always reports no audio; narration stays text-only.
func (c *Client) SynthesizeSpeech(ctx context.Context, message string) ([]byte, error) {
	return nil, nil
}

func (c *Client) chat(ctx context.Context, systemPrompt, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"format": "json",
		"stream": false,
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.Host+"/api/chat", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ollama status %d", resp.StatusCode)
	}
	var out struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Message.Content), nil
}
