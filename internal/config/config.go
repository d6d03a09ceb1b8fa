package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	PublicURL       string
	DefaultProvider string
	GeminiKey       string
	GeminiBaseURL   string
	TextModel       string
	TTSModel        string
	TTSVoice        string
	OllamaHost      string
	OllamaModel     string
	QuestionCount   int
	CallTimeoutSec  int
	ExportEnabled   bool
	ExportFile      string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.PublicURL = os.Getenv("PUBLIC_URL")
	c.DefaultProvider = getenv("DEFAULT_PROVIDER", "gemini")
	c.GeminiKey = os.Getenv("GEMINI_API_KEY")
	c.GeminiBaseURL = os.Getenv("GEMINI_BASE_URL")
	c.TextModel = getenv("TEXT_MODEL", "gemini-3-flash-preview")
	c.TTSModel = getenv("TTS_MODEL", "gemini-2.5-flash-preview-tts")
	c.TTSVoice = getenv("TTS_VOICE", "Kore")
	c.OllamaHost = getenv("OLLAMA_HOST", "http://localhost:11434")
	c.OllamaModel = getenv("OLLAMA_MODEL", "llama3.2")
	c.QuestionCount = getenvInt("QUESTION_COUNT", 5)
	c.CallTimeoutSec = getenvInt("AI_TIMEOUT", 30)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./triviagenius-results.txt")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
