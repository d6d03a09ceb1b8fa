package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/quizhost/triviagenius/internal/ai"
	"github.com/quizhost/triviagenius/internal/ai/gemini"
	"github.com/quizhost/triviagenius/internal/ai/ollama"
	"github.com/quizhost/triviagenius/internal/config"
	"github.com/quizhost/triviagenius/internal/game"
	"github.com/quizhost/triviagenius/internal/ws"
	staticserver "github.com/quizhost/triviagenius/static"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`TriviaGenius - AI-hosted trivia game

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  PUBLIC_URL          Public base URL used in join QR codes
  DEFAULT_PROVIDER    Content provider: "gemini" or "ollama" (default: gemini)
  GEMINI_API_KEY      Gemini API key (required for Gemini provider)
  GEMINI_BASE_URL     Custom Gemini API base URL (optional)
  TEXT_MODEL          Model for questions and commentary
  TTS_MODEL           Model for speech synthesis
  TTS_VOICE           Prebuilt voice name (default: Kore)
  OLLAMA_HOST         Ollama host URL (default: http://localhost:11434)
  OLLAMA_MODEL        Ollama model (default: llama3.2)
  QUESTION_COUNT      Questions per session (default: 5)
  AI_TIMEOUT          Per-call provider timeout in seconds (default: 30)
  EXPORT_ENABLED      Append session results to a file (default: false)
  EXPORT_FILE         Path for session results (default: ./triviagenius-results.txt)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("TriviaGenius %s\n", version)
		return
	}

	// Determine port
	port := *portFlag
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Config
	cfg := config.FromEnv()

	// Content provider
	var provider ai.Provider
	switch strings.ToLower(cfg.DefaultProvider) {
	case "ollama":
		provider = ollama.New(cfg.OllamaHost, cfg.OllamaModel)
	default:
		provider = gemini.New(cfg.GeminiKey, cfg.GeminiBaseURL, cfg.TextModel, cfg.TTSModel, cfg.TTSVoice)
	}

	// Session manager + socket server
	m := game.NewManager()
	sock := ws.New(m, provider, cfg)
	io := sock.Mount(r)
	defer io.Close()

	// Active session for the spectator join flow
	r.GET("/api/session/active", func(c *gin.Context) {
		if code, ctrl := m.Active(); ctrl != nil {
			c.JSON(http.StatusOK, gin.H{"sessionCode": code})
			return
		}
		c.Status(http.StatusNotFound)
	})

	// QR code for opening a session on a second screen
	r.GET("/qr/:code", func(c *gin.Context) {
		code := c.Param("code")
		if _, err := m.Get(code); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		base := cfg.PublicURL
		if base == "" {
			scheme := "http"
			if c.Request.TLS != nil {
				scheme = "https"
			}
			base = scheme + "://" + c.Request.Host
		}
		png, err := qrcode.Encode(base+"/?join="+code, qrcode.Medium, 320)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	// Serve frontend (if embedded build is present) for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
