package ai

import (
	"context"

	"github.com/quizhost/triviagenius/internal/game"
)

// Provider generates all game content: the question set, per-event host
// commentary, and synthesized speech. SynthesizeSpeech returns raw
// PCM16LE mono samples at 24 kHz, or nil when the provider produced no
// audio.
type Provider interface {
	GenerateQuestions(ctx context.Context, category string, count int) ([]game.TriviaQuestion, error)
	HostCommentary(ctx context.Context, personality game.Personality, contextText string, score, streak int) (game.Commentary, error)
	SynthesizeSpeech(ctx context.Context, message string) ([]byte, error)
}

type Config struct {
	DefaultProvider string
	GeminiKey       string
	GeminiBaseURL   string
	TextModel       string
	TTSModel        string
	TTSVoice        string
	OllamaHost      string
	OllamaModel     string
}
