package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubProvider struct {
	mu sync.Mutex

	questions    []TriviaQuestion
	questionsErr error

	commentary    Commentary
	commentaryErr error
	hold          chan struct{} // when set, HostCommentary blocks until closed

	pcm       []byte
	speechErr error
}

func (p *stubProvider) GenerateQuestions(ctx context.Context, category string, count int) ([]TriviaQuestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.questions, p.questionsErr
}

func (p *stubProvider) HostCommentary(ctx context.Context, personality Personality, contextText string, score, streak int) (Commentary, error) {
	p.mu.Lock()
	hold := p.hold
	c, err := p.commentary, p.commentaryErr
	p.mu.Unlock()
	if hold != nil {
		<-hold
	}
	return c, err
}

func (p *stubProvider) SynthesizeSpeech(ctx context.Context, message string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pcm, p.speechErr
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestControllerStartSuccess(t *testing.T) {
	p := &stubProvider{
		questions:  makeQuestions(5),
		commentary: Commentary{Message: "Let the games begin.", Expression: "happy"},
	}
	c := NewController("TEST1", p, Options{})

	if err := c.Start(PersonalitySnarky, "Classic Cinema"); err != nil {
		t.Fatalf("start should be accepted: %v", err)
	}
	waitFor(t, "intro with commentary", func() bool {
		snap := c.Snapshot()
		return snap.State == StateIntro && snap.Host.Message == "Let the games begin."
	})
	snap := c.Snapshot()
	if snap.Host.Expression != ExpressionHappy {
		t.Fatalf("expected happy host, got %s", snap.Host.Expression)
	}
	if snap.QuestionCount != 5 {
		t.Fatalf("expected 5 questions, got %d", snap.QuestionCount)
	}
}

func TestControllerStartFatalOnEmptyQuestions(t *testing.T) {
	p := &stubProvider{questionsErr: errors.New("boom")}
	c := NewController("TEST1", p, Options{})

	if err := c.Start(PersonalitySnarky, "Classic Cinema"); err != nil {
		t.Fatalf("start should be accepted: %v", err)
	}
	waitFor(t, "lobby with error", func() bool {
		snap := c.Snapshot()
		return snap.State == StateLobby && !snap.Loading && snap.Error != ""
	})
}

func TestControllerCommentaryFailureDegradesSilently(t *testing.T) {
	p := &stubProvider{
		questions:     makeQuestions(5),
		commentaryErr: errors.New("model unavailable"),
	}
	c := NewController("TEST1", p, Options{})

	c.Start(PersonalitySnarky, "Classic Cinema")
	waitFor(t, "intro", func() bool { return c.Snapshot().State == StateIntro })

	// the prior host message stays put
	time.Sleep(50 * time.Millisecond)
	if got := c.Snapshot().Host.Message; got != defaultHostMessage {
		t.Fatalf("host message should be unchanged, got %q", got)
	}
}

func TestControllerStaleCommentaryAfterReset(t *testing.T) {
	hold := make(chan struct{})
	p := &stubProvider{
		questions:  makeQuestions(5),
		commentary: Commentary{Message: "From beyond the grave.", Expression: "shocked"},
		hold:       hold,
	}
	c := NewController("TEST1", p, Options{})

	c.Start(PersonalitySnarky, "Classic Cinema")
	waitFor(t, "intro", func() bool { return c.Snapshot().State == StateIntro })

	c.Reset()
	close(hold)

	time.Sleep(50 * time.Millisecond)
	snap := c.Snapshot()
	if snap.State != StateLobby {
		t.Fatalf("expected state %s, got %s", StateLobby, snap.State)
	}
	if snap.Host.Message == "From beyond the grave." {
		t.Fatal("stale commentary from a discarded session must not apply")
	}
}

func TestControllerSpeechDelivery(t *testing.T) {
	pcm := make([]byte, 48000) // 1 second at 24kHz mono PCM16
	p := &stubProvider{
		questions:  makeQuestions(5),
		commentary: Commentary{Message: "Hello there.", Expression: "idle"},
		pcm:        pcm,
	}
	c := NewController("TEST1", p, Options{})

	type clip struct {
		wav      []byte
		duration time.Duration
	}
	got := make(chan clip, 1)
	c.OnSpeech = func(wav []byte, d time.Duration) {
		got <- clip{wav, d}
	}

	c.Start(PersonalitySnarky, "Classic Cinema")

	select {
	case cl := <-got:
		if len(cl.wav) != 44+len(pcm) {
			t.Fatalf("expected %d wav bytes, got %d", 44+len(pcm), len(cl.wav))
		}
		if cl.duration != time.Second {
			t.Fatalf("expected 1s duration, got %v", cl.duration)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no speech delivered")
	}
	if !c.Snapshot().Host.IsSpeaking {
		t.Fatal("host should be speaking while playback is in flight")
	}

	c.SpeechEnded()
	if c.Snapshot().Host.IsSpeaking {
		t.Fatal("ack should resolve IsSpeaking")
	}
}

func TestControllerSpeechFailureResolves(t *testing.T) {
	p := &stubProvider{
		questions:  makeQuestions(5),
		commentary: Commentary{Message: "Quiet host.", Expression: "idle"},
		speechErr:  errors.New("tts down"),
	}
	c := NewController("TEST1", p, Options{})

	spoke := false
	c.OnSpeech = func([]byte, time.Duration) { spoke = true }

	c.Start(PersonalitySnarky, "Classic Cinema")
	waitFor(t, "commentary applied", func() bool {
		return c.Snapshot().Host.Message == "Quiet host."
	})
	waitFor(t, "speech resolved", func() bool {
		return !c.Snapshot().Host.IsSpeaking
	})
	if spoke {
		t.Fatal("no audio should be delivered on synthesis failure")
	}
}

func TestControllerVoiceToggleGatesSpeech(t *testing.T) {
	p := &stubProvider{
		questions:  makeQuestions(5),
		commentary: Commentary{Message: "Silence.", Expression: "idle"},
		pcm:        make([]byte, 4800),
	}
	c := NewController("TEST1", p, Options{})

	spoke := false
	c.OnSpeech = func([]byte, time.Duration) { spoke = true }

	if enabled := c.ToggleVoice(); enabled {
		t.Fatal("toggle should disable voice")
	}
	c.Start(PersonalitySnarky, "Classic Cinema")
	waitFor(t, "commentary applied", func() bool {
		return c.Snapshot().Host.Message == "Silence."
	})
	time.Sleep(50 * time.Millisecond)
	if spoke {
		t.Fatal("speech must not be synthesized with voice disabled")
	}
	if c.Snapshot().Host.IsSpeaking {
		t.Fatal("IsSpeaking must stay false with voice disabled")
	}
}

func TestControllerAnswerFlow(t *testing.T) {
	p := &stubProvider{
		questions:  makeQuestions(2),
		commentary: Commentary{Message: "Noted.", Expression: "thinking"},
	}
	c := NewController("TEST1", p, Options{})

	c.Start(PersonalitySnarky, "Classic Cinema")
	waitFor(t, "intro", func() bool { return c.Snapshot().State == StateIntro })
	if err := c.Ready(); err != nil {
		t.Fatalf("ready: %v", err)
	}

	if err := c.SubmitAnswer("Casablanca"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.SubmitAnswer("Vertigo"); !errors.Is(err, ErrInvalidState) && !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected guard error on double submit, got %v", err)
	}
	snap := c.Snapshot()
	if snap.Score != 110 || snap.Streak != 1 {
		t.Fatalf("expected 110/1, got %d/%d", snap.Score, snap.Streak)
	}

	if err := c.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if got := c.Snapshot().State; got != StatePlaying {
		t.Fatalf("expected %s, got %s", StatePlaying, got)
	}

	if err := c.SubmitAnswer("Casablanca"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := c.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	waitFor(t, "summary with end commentary", func() bool {
		snap := c.Snapshot()
		return snap.State == StateSummary && snap.Host.Message == "Noted."
	})
}
