package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizhost/triviagenius/internal/game"
)

type Client struct {
	APIKey    string
	BaseURL   string
	TextModel string
	TTSModel  string
	Voice     string
	http      *http.Client
}

func New(apiKey, baseURL, textModel, ttsModel, voice string) *Client {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if textModel == "" {
		textModel = "gemini-3-flash-preview"
	}
	if ttsModel == "" {
		ttsModel = "gemini-2.5-flash-preview-tts"
	}
	if voice == "" {
		voice = "Kore"
	}
	return &Client{
		APIKey:    apiKey,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		TextModel: textModel,
		TTSModel:  ttsModel,
		Voice:     voice,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

var questionSchema = map[string]any{
	"type": "ARRAY",
	"items": map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"id":            map[string]any{"type": "STRING"},
			"question":      map[string]any{"type": "STRING"},
			"options":       map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
			"correctAnswer": map[string]any{"type": "STRING"},
			"category":      map[string]any{"type": "STRING"},
			"difficulty":    map[string]any{"type": "STRING"},
			"explanation":   map[string]any{"type": "STRING"},
		},
		"required": []string{"id", "question", "options", "correctAnswer", "category", "difficulty", "explanation"},
	},
}

var commentarySchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"message":    map[string]any{"type": "STRING"},
		"expression": map[string]any{"type": "STRING"},
	},
}

func (c *Client) GenerateQuestions(ctx context.Context, category string, count int) ([]game.TriviaQuestion, error) {
	prompt := fmt.Sprintf("Generate %d unique and challenging trivia questions about %s. Return them as a JSON array.", count, category)
	text, err := c.generateJSON(ctx, prompt, questionSchema)
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
	prompt := fmt.Sprintf(`You are a trivia game host with the personality: %s.
Current Player Stats: Score %d, Streak %d.
Context: %s

Respond to the player's recent action (correct/incorrect/start/end).
Keep it short (1-2 sentences).
Return a JSON object with 'message' and 'expression' (one of: idle, happy, thinking, shocked, roast).`,
		personality, score, streak, contextText)

	text, err := c.generateJSON(ctx, prompt, commentarySchema)
	if err != nil {
		return game.Commentary{}, err
	}
	var out game.Commentary
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return game.Commentary{}, fmt.Errorf("failed to parse commentary: %w", err)
	}
	return out, nil
}

// SynthesizeSpeech returns raw PCM16LE mono 24kHz samples, or nil when
// the model produced no audio part.
func (c *Client) SynthesizeSpeech(ctx context.Context, message string) ([]byte, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": message}}},
		},
		"generationConfig": map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{"voiceName": c.Voice},
				},
			},
		},
	}
	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					InlineData struct {
						Data string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := c.generate(ctx, c.TTSModel, payload, &out); err != nil {
		return nil, err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, nil
	}
	b64 := out.Candidates[0].Content.Parts[0].InlineData.Data
	if b64 == "" {
		return nil, nil
	}
	pcm, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	return pcm, nil
}

// generateJSON asks the text model for a schema-constrained JSON
// response and returns the raw JSON text.
func (c *Client) generateJSON(ctx context.Context, prompt string, schema map[string]any) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   schema,
		},
	}
	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := c.generate(ctx, c.TextModel, payload, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates")
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) generate(ctx context.Context, model string, payload map[string]any, out any) error {
	if c.APIKey == "" {
		return errors.New("missing GEMINI_API_KEY")
	}
	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, model)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("x-goog-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
