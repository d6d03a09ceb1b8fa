package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quizhost/triviagenius/internal/audio"
)

// Provider is the slice of the content-generation service the
// controller needs. Speech bytes are raw PCM16LE mono samples at
// SpeechSampleRate; a nil slice means no audio was produced.
type Provider interface {
	GenerateQuestions(ctx context.Context, category string, count int) ([]TriviaQuestion, error)
	HostCommentary(ctx context.Context, personality Personality, contextText string, score, streak int) (Commentary, error)
	SynthesizeSpeech(ctx context.Context, message string) ([]byte, error)
}

const (
	SpeechSampleRate = 24000
	SpeechChannels   = 1

	// grace added to the estimated playback duration before the
	// server-side fallback clears IsSpeaking.
	speechGrace = 2 * time.Second
)

// Options tune a controller; zero values fall back to defaults.
type Options struct {
	QuestionCount int
	CallTimeout   time.Duration
	ExportFile    string // empty disables result export
}

// Controller drives one SessionCtx: it applies user events, runs the
// countdown, and delegates content generation and narration to the
// provider. Provider calls run in goroutines tagged with the session
// seq so stale responses are discarded instead of applied.
type Controller struct {
	sess     *SessionCtx
	provider Provider
	opts     Options

	// OnState is invoked after every observable mutation; OnSpeech
	// delivers a playable WAV clip with its estimated duration. Both
	// must be set before the first event and may be nil in tests.
	OnState  func()
	OnSpeech func(wav []byte, duration time.Duration)
}

func NewController(code string, provider Provider, opts Options) *Controller {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = DefaultQuestionCount
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 30 * time.Second
	}
	return &Controller{sess: NewSession(code), provider: provider, opts: opts}
}

func (c *Controller) Session() *SessionCtx { return c.sess }

func (c *Controller) Snapshot() Snapshot { return c.sess.Snapshot() }

func (c *Controller) notifyState() {
	if c.OnState != nil {
		c.OnState()
	}
}

func (c *Controller) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.opts.CallTimeout)
}

// Start fetches the question set and intro narration, then enters the
// intro. An empty or failed fetch is fatal for the start: the session
// stays in the lobby with an error indicator.
func (c *Controller) Start(p Personality, category string) error {
	issued, err := c.sess.BeginStart(p, category)
	if err != nil {
		return err
	}
	c.notifyState()

	go func() {
		ctx, cancel := c.callCtx()
		defer cancel()

		questions, err := c.provider.GenerateQuestions(ctx, category, c.opts.QuestionCount)
		if err != nil || len(questions) == 0 {
			log.Error().Err(err).Str("code", c.sess.Code).Str("category", category).Msg("question generation failed")
			c.sess.FailStart(issued, "The question machine jammed. Try again.")
			c.notifyState()
			return
		}
		introSeq, ok := c.sess.ApplyStart(issued, questions)
		if !ok {
			return
		}
		c.notifyState()
		c.requestCommentary(introSeq, "Start of game intro", 0, 0)
	}()
	return nil
}

// Ready confirms the intro and starts the first countdown.
func (c *Controller) Ready() error {
	issued, err := c.sess.Ready()
	if err != nil {
		return err
	}
	c.notifyState()
	c.runCountdown(issued)
	return nil
}

// SubmitAnswer runs the scoring flow. Re-entrant submissions (double
// click, stale timer fire) come back as ErrAlreadyAnswered and change
// nothing; callers treat that as a no-op.
func (c *Controller) SubmitAnswer(answer string) error {
	res, err := c.sess.Submit(answer)
	if err != nil {
		return err
	}
	c.notifyState()

	q := res.Question
	var contextText string
	if res.IsCorrect {
		contextText = fmt.Sprintf("Correct answer. Explaining: %s", q.Explanation)
	} else {
		contextText = fmt.Sprintf("Incorrect answer. Correct was %s. Explaining: %s", q.CorrectAnswer, q.Explanation)
	}
	go c.requestCommentary(res.Seq, contextText, res.Score, res.Streak)
	return nil
}

// Advance moves past the review screen.
func (c *Controller) Advance() error {
	res, err := c.sess.Advance()
	if err != nil {
		return err
	}
	c.afterAdvance(res)
	return nil
}

// Skip force-advances without a scoring event.
func (c *Controller) Skip() error {
	res, err := c.sess.Skip()
	if err != nil {
		return err
	}
	c.afterAdvance(res)
	return nil
}

func (c *Controller) afterAdvance(res AdvanceResult) {
	c.notifyState()
	if !res.Finished {
		c.runCountdown(res.Seq)
		return
	}
	if c.opts.ExportFile != "" {
		if err := ExportResults(c.sess, c.opts.ExportFile); err != nil {
			log.Error().Err(err).Str("code", c.sess.Code).Msg("failed to export session results")
		}
	}
	go c.requestCommentary(res.Seq, "Game over summary", res.Score, res.Streak)
}

// RequestHint shows a hint in the host channel. No scoring side effects
// and no speech; the hint is display-only.
func (c *Controller) RequestHint() error {
	if _, err := c.sess.Hint(); err != nil {
		return err
	}
	c.notifyState()
	return nil
}

// ToggleVoice gates future speech synthesis only.
func (c *Controller) ToggleVoice() bool {
	enabled := c.sess.ToggleVoice()
	c.notifyState()
	return enabled
}

// Reset discards everything and returns to the lobby.
func (c *Controller) Reset() {
	c.sess.Reset()
	c.notifyState()
}

// ChangePersonality swaps the host, discarding the running session.
func (c *Controller) ChangePersonality(p Personality) {
	c.sess.ChangePersonality(p)
	c.notifyState()
}

// SpeechEnded is the playback-completion ack from the client.
func (c *Controller) SpeechEnded() {
	c.sess.EndSpeech()
	c.notifyState()
}

// runCountdown drives the per-question timer: one decrement per second
// while the session stays in Playing under the same seq. Hitting zero
// submits the empty answer through the normal guarded path, so a racing
// manual answer wins and the timeout becomes a no-op.
func (c *Controller) runCountdown(issued uint64) {
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for range t.C {
			switch c.sess.Tick(issued) {
			case TickStop:
				return
			case TickContinue:
				c.notifyState()
			case TickTimeout:
				c.notifyState()
				if err := c.SubmitAnswer(""); err != nil {
					log.Debug().Err(err).Str("code", c.sess.Code).Msg("timeout submit ignored")
				}
				return
			}
		}
	}()
}

// requestCommentary fetches narration for a game event and applies it
// if still current. Failures degrade silently: the previous host
// message stays on screen.
func (c *Controller) requestCommentary(issued uint64, contextText string, score, streak int) {
	ctx, cancel := c.callCtx()
	defer cancel()

	snap := c.sess.Snapshot()
	commentary, err := c.provider.HostCommentary(ctx, snap.Personality, contextText, score, streak)
	if err != nil {
		log.Warn().Err(err).Str("code", c.sess.Code).Msg("host commentary failed")
		return
	}
	if !c.sess.ApplyCommentary(issued, commentary) {
		log.Debug().Str("code", c.sess.Code).Msg("discarded stale commentary")
		return
	}
	c.notifyState()
	c.speak(issued, commentary.Message)
}

// speak synthesizes audio for the exact message just applied. While the
// request and playback are in flight IsSpeaking is true; it resolves on
// the client ack, on failure, or via the duration fallback when the ack
// never arrives.
func (c *Controller) speak(issued uint64, message string) {
	speechID, ok := c.sess.BeginSpeech(issued)
	if !ok {
		return
	}
	c.notifyState()

	ctx, cancel := c.callCtx()
	defer cancel()

	pcm, err := c.provider.SynthesizeSpeech(ctx, message)
	if err != nil || len(pcm) == 0 {
		if err != nil {
			log.Warn().Err(err).Str("code", c.sess.Code).Msg("speech synthesis failed")
		}
		c.sess.EndSpeechIf(speechID)
		c.notifyState()
		return
	}

	wav := audio.WAVFromPCM16(pcm, SpeechSampleRate, SpeechChannels)
	duration := audio.Duration(pcm, SpeechSampleRate, SpeechChannels)
	if c.OnSpeech != nil {
		c.OnSpeech(wav, duration)
	}
	time.AfterFunc(duration+speechGrace, func() {
		c.sess.EndSpeechIf(speechID)
		c.notifyState()
	})
}
