package ws

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/quizhost/triviagenius/internal/ai"
	"github.com/quizhost/triviagenius/internal/config"
	"github.com/quizhost/triviagenius/internal/game"
)

type ConnCtx struct {
	Code string
	Role string // "player" | "spectator"
}

type Server struct {
	M        *game.Manager
	provider ai.Provider
	cfg      config.Config
	io       *socketio.Server
}

func New(m *game.Manager, provider ai.Provider, cfg config.Config) *Server {
	return &Server{M: m, provider: provider, cfg: cfg}
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// game:create
	io.OnEvent("/", "game:create", func(s socketio.Conn) map[string]any {
		code, ctrl := srv.M.CreateSession(srv.provider, srv.sessionOptions())
		ctrl.OnState = func() { srv.emitStateTo(code) }
		ctrl.OnSpeech = func(wav []byte, duration time.Duration) {
			io.BroadcastToRoom("/", code, "game:speech", map[string]any{
				"audio":      base64.StdEncoding.EncodeToString(wav),
				"durationMs": duration.Milliseconds(),
			})
		}
		s.SetContext(&ConnCtx{Code: code, Role: "player"})
		s.Join(code)
		log.Info().Str("sid", s.ID()).Str("code", code).Msg("game:create")
		srv.emitStateTo(code)
		return map[string]any{"sessionCode": code}
	})

	// game:join attaches a second screen (QR hand-off) as a spectator.
	io.OnEvent("/", "game:join", func(s socketio.Conn, payload struct {
		SessionCode string `json:"sessionCode"`
	}) map[string]any {
		ctrl, err := srv.M.Get(payload.SessionCode)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		s.SetContext(&ConnCtx{Code: payload.SessionCode, Role: "spectator"})
		s.Join(payload.SessionCode)
		log.Info().Str("sid", s.ID()).Str("code", payload.SessionCode).Msg("game:join")
		s.Emit("game:state", ctrl.Snapshot())
		return map[string]any{"ok": true}
	})

	// game:start
	io.OnEvent("/", "game:start", func(s socketio.Conn, payload struct {
		Personality string `json:"personality"`
		Category    string `json:"category"`
	}) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		p, ok := game.ParsePersonality(payload.Personality)
		if !ok {
			return srv.err(s, "bad_request", "Unknown personality")
		}
		if payload.Category == "" {
			return srv.err(s, "bad_request", "Category required")
		}
		if err := ctrl.Start(p, payload.Category); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("code", ctx.Code).Str("personality", payload.Personality).Str("category", payload.Category).Msg("game:start")
		return map[string]any{"ok": true}
	})

	// game:ready
	io.OnEvent("/", "game:ready", func(s socketio.Conn) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		if err := ctrl.Ready(); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("code", ctx.Code).Msg("game:ready")
		return map[string]any{"ok": true}
	})

	// game:answer
	io.OnEvent("/", "game:answer", func(s socketio.Conn, payload struct {
		Answer string `json:"answer"`
	}) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		if err := ctrl.SubmitAnswer(payload.Answer); err != nil {
			// a second submission for the same question is a no-op,
			// not an error
			if errors.Is(err, game.ErrAlreadyAnswered) {
				return map[string]any{"ok": true}
			}
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("code", ctx.Code).Msg("game:answer")
		return map[string]any{"ok": true}
	})

	// game:advance
	io.OnEvent("/", "game:advance", func(s socketio.Conn) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		if err := ctrl.Advance(); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("code", ctx.Code).Msg("game:advance")
		return map[string]any{"ok": true}
	})

	// game:hint
	io.OnEvent("/", "game:hint", func(s socketio.Conn) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		if err := ctrl.RequestHint(); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("code", ctx.Code).Msg("game:hint")
		return map[string]any{"ok": true}
	})

	// game:skip
	io.OnEvent("/", "game:skip", func(s socketio.Conn) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		if err := ctrl.Skip(); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		log.Info().Str("code", ctx.Code).Msg("game:skip")
		return map[string]any{"ok": true}
	})

	// game:voice
	io.OnEvent("/", "game:voice", func(s socketio.Conn) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		enabled := ctrl.ToggleVoice()
		log.Info().Str("code", ctx.Code).Bool("enabled", enabled).Msg("game:voice")
		return map[string]any{"voiceEnabled": enabled}
	})

	// game:reset
	io.OnEvent("/", "game:reset", func(s socketio.Conn) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		ctrl.Reset()
		log.Info().Str("code", ctx.Code).Msg("game:reset")
		return map[string]any{"ok": true}
	})

	// game:personality
	io.OnEvent("/", "game:personality", func(s socketio.Conn, payload struct {
		Personality string `json:"personality"`
	}) map[string]any {
		ctrl, ctx, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		p, ok := game.ParsePersonality(payload.Personality)
		if !ok {
			return srv.err(s, "bad_request", "Unknown personality")
		}
		ctrl.ChangePersonality(p)
		log.Info().Str("code", ctx.Code).Str("personality", payload.Personality).Msg("game:personality")
		return map[string]any{"ok": true}
	})

	// speech:ended - playback completion ack from the browser
	io.OnEvent("/", "speech:ended", func(s socketio.Conn) map[string]any {
		ctrl, _, err := srv.ctrl(s)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		ctrl.SpeechEnded()
		return map[string]any{"ok": true}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	// Mount to router
	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

func (srv *Server) sessionOptions() game.Options {
	return game.Options{
		QuestionCount: srv.cfg.QuestionCount,
		CallTimeout:   time.Duration(srv.cfg.CallTimeoutSec) * time.Second,
		ExportFile:    srv.exportFile(),
	}
}

func (srv *Server) exportFile() string {
	if !srv.cfg.ExportEnabled {
		return ""
	}
	return srv.cfg.ExportFile
}

func (srv *Server) ctrl(s socketio.Conn) (*game.Controller, *ConnCtx, error) {
	ctx, _ := s.Context().(*ConnCtx)
	if ctx == nil || ctx.Code == "" {
		return nil, nil, game.ErrSessionNotFound
	}
	ctrl, err := srv.M.Get(ctx.Code)
	if err != nil {
		return nil, nil, err
	}
	return ctrl, ctx, nil
}

func (srv *Server) emitStateTo(code string) {
	ctrl, err := srv.M.Get(code)
	if err != nil {
		return
	}
	srv.io.BroadcastToRoom("/", code, "game:state", ctrl.Snapshot())
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}
