package game

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidState    = errors.New("invalid state for action")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrBusy            = errors.New("start already in progress")
)

const defaultHostMessage = "Welcome to the thunderdome. Hope you brought a brain."

// SessionCtx holds the full mutable state of one game session. All
// mutation goes through methods that hold mu; async results (timer
// ticks, provider responses) carry the seq value they were issued
// under and are discarded when it no longer matches.
type SessionCtx struct {
	Code      string
	CreatedAt time.Time

	state       State
	personality Personality
	category    string

	score      int
	streak     int
	bestStreak int
	index      int
	questions  []TriviaQuestion
	history    []HistoryEntry

	timeLeft int
	answered bool
	selected string

	host         HostState
	voiceEnabled bool
	loading      bool
	lastError    string

	seq       uint64
	speechSeq uint64

	mu sync.Mutex
}

func NewSession(code string) *SessionCtx {
	return &SessionCtx{
		Code:         code,
		CreatedAt:    time.Now().UTC(),
		state:        StateLobby,
		personality:  PersonalitySnarky,
		category:     Categories[0],
		timeLeft:     QuestionTime,
		voiceEnabled: true,
		host: HostState{
			Personality: PersonalitySnarky,
			Message:     defaultHostMessage,
			Expression:  ExpressionIdle,
		},
	}
}

// next invalidates all pending async work. Callers must hold mu.
func (s *SessionCtx) next() uint64 {
	s.seq++
	return s.seq
}

// BeginStart marks the session as loading and records the chosen
// personality and category. The returned seq tags the in-flight
// question fetch.
func (s *SessionCtx) BeginStart(p Personality, category string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLobby {
		return 0, ErrInvalidState
	}
	if s.loading {
		return 0, ErrBusy
	}
	s.loading = true
	s.lastError = ""
	s.personality = p
	s.category = category
	return s.next(), nil
}

// FailStart re-presents the lobby with an error indicator. No-op if the
// session moved on since the fetch was issued.
func (s *SessionCtx) FailStart(issued uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != issued {
		return
	}
	s.loading = false
	s.lastError = msg
}

// ApplyStart installs the fetched question set and enters Intro. The
// returned seq tags the intro narration request.
func (s *SessionCtx) ApplyStart(issued uint64, questions []TriviaQuestion) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != issued {
		return 0, false
	}
	s.loading = false
	s.lastError = ""
	s.score = 0
	s.streak = 0
	s.bestStreak = 0
	s.index = 0
	s.questions = questions
	s.history = nil
	s.timeLeft = QuestionTime
	s.answered = false
	s.selected = ""
	s.state = StateIntro
	s.host = HostState{
		Personality: s.personality,
		Message:     s.host.Message,
		Expression:  ExpressionIdle,
	}
	return s.next(), true
}

// Ready confirms the intro and starts play. The returned seq tags the
// countdown for the first question.
func (s *SessionCtx) Ready() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIntro {
		return 0, ErrInvalidState
	}
	s.state = StatePlaying
	s.timeLeft = QuestionTime
	s.answered = false
	s.selected = ""
	return s.next(), nil
}

type TickResult int

const (
	TickStop TickResult = iota
	TickContinue
	TickTimeout
)

// Tick advances the countdown by one second. A stale seq or any state
// other than Playing stops the ticker; reaching zero reports a timeout
// exactly once (the caller submits the empty answer through the normal
// guarded path).
func (s *SessionCtx) Tick(issued uint64) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != issued || s.state != StatePlaying || s.answered {
		return TickStop
	}
	if s.timeLeft > 0 {
		s.timeLeft--
	}
	if s.timeLeft == 0 {
		return TickTimeout
	}
	return TickContinue
}

// SubmitResult carries what the commentary request needs after a
// scoring event.
type SubmitResult struct {
	Question  TriviaQuestion
	IsCorrect bool
	Score     int
	Streak    int
	Finished  bool // true when this was the last question (informational)
	Seq       uint64
}

// Submit applies the scoring flow for the current question. The empty
// answer is the timeout path and is always incorrect. A second
// submission for the same question returns ErrAlreadyAnswered and
// leaves all state untouched.
func (s *SessionCtx) Submit(answer string) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return SubmitResult{}, ErrInvalidState
	}
	if s.answered {
		return SubmitResult{}, ErrAlreadyAnswered
	}
	q := s.questions[s.index]
	isCorrect := answer != "" && answer == q.CorrectAnswer

	if isCorrect {
		s.streak++
	} else {
		s.streak = 0
	}
	if s.streak > s.bestStreak {
		s.bestStreak = s.streak
	}
	if isCorrect {
		gain := int(math.Floor(100*float64(s.timeLeft)/QuestionTime + float64(s.streak)*10))
		s.score += gain
	}
	s.history = append(s.history, HistoryEntry{
		QuestionID: q.ID,
		IsCorrect:  isCorrect,
		TimeTaken:  QuestionTime - s.timeLeft,
	})
	s.answered = true
	s.selected = answer
	s.state = StateQuestionReview
	return SubmitResult{
		Question:  q,
		IsCorrect: isCorrect,
		Score:     s.score,
		Streak:    s.streak,
		Finished:  s.index+1 >= len(s.questions),
		Seq:       s.next(),
	}, nil
}

// AdvanceResult reports where an advance or skip landed.
type AdvanceResult struct {
	Finished bool
	Score    int
	Streak   int
	Seq      uint64
}

// Advance moves from review to the next question, or to the summary
// after the last one.
func (s *SessionCtx) Advance() (AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateQuestionReview {
		return AdvanceResult{}, ErrInvalidState
	}
	return s.advanceLocked(), nil
}

// Skip force-advances out of an unanswered question. It bypasses
// scoring entirely: no history record, score and streak untouched.
func (s *SessionCtx) Skip() (AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return AdvanceResult{}, ErrInvalidState
	}
	return s.advanceLocked(), nil
}

func (s *SessionCtx) advanceLocked() AdvanceResult {
	if s.index+1 >= len(s.questions) {
		s.state = StateSummary
		return AdvanceResult{Finished: true, Score: s.score, Streak: s.streak, Seq: s.next()}
	}
	s.index++
	s.timeLeft = QuestionTime
	s.answered = false
	s.selected = ""
	s.state = StatePlaying
	return AdvanceResult{Score: s.score, Streak: s.streak, Seq: s.next()}
}

// Hint surfaces a first-letter hint in the host channel. It reads the
// current question but does not touch score, streak, or history.
func (s *SessionCtx) Hint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return "", ErrInvalidState
	}
	q := s.questions[s.index]
	hint := fmt.Sprintf("Hint: It starts with %s... probably.", string([]rune(q.CorrectAnswer)[0]))
	s.host.Message = hint
	return hint, nil
}

// ToggleVoice flips voice output and reports the new setting. It only
// gates future speech requests; playback already in flight resolves on
// its own.
func (s *SessionCtx) ToggleVoice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceEnabled = !s.voiceEnabled
	return s.voiceEnabled
}

// Reset discards the session and returns to the lobby.
func (s *SessionCtx) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// ChangePersonality swaps the host and forces a return to the lobby,
// discarding the running session.
func (s *SessionCtx) ChangePersonality(p Personality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.personality = p
	s.host.Personality = p
}

func (s *SessionCtx) resetLocked() {
	s.state = StateLobby
	s.score = 0
	s.streak = 0
	s.bestStreak = 0
	s.index = 0
	s.questions = nil
	s.history = nil
	s.timeLeft = QuestionTime
	s.answered = false
	s.selected = ""
	s.loading = false
	s.lastError = ""
	s.host = HostState{
		Personality: s.personality,
		Message:     defaultHostMessage,
		Expression:  ExpressionIdle,
	}
	s.next()
}

// ApplyCommentary replaces the host message and expression wholesale.
// Stale results (issued before a reset, restart, or advance) are
// dropped so an old session can never narrate into a new one.
func (s *SessionCtx) ApplyCommentary(issued uint64, c Commentary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != issued {
		return false
	}
	s.host.Message = c.Message
	s.host.Expression = CoerceExpression(c.Expression)
	return true
}

// BeginSpeech marks the host as speaking for the narration tagged by
// issued, provided voice is enabled and the narration is still current.
// The returned speech id lets a duration-based fallback clear only its
// own playback.
func (s *SessionCtx) BeginSpeech(issued uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != issued || !s.voiceEnabled {
		return 0, false
	}
	s.speechSeq++
	s.host.IsSpeaking = true
	return s.speechSeq, true
}

// EndSpeech resolves IsSpeaking unconditionally. Used for the client's
// playback-completion ack, which must work even after a voice toggle or
// session reset.
func (s *SessionCtx) EndSpeech() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host.IsSpeaking = false
}

// EndSpeechIf resolves IsSpeaking only when the given playback is still
// the active one, so a late fallback timer cannot cut off newer speech.
func (s *SessionCtx) EndSpeechIf(speechID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speechSeq == speechID {
		s.host.IsSpeaking = false
	}
}

// Snapshot returns a copy of everything the rendering layer may read.
func (s *SessionCtx) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Code:           s.Code,
		State:          s.state,
		Personality:    s.personality,
		Category:       s.category,
		Score:          s.score,
		Streak:         s.streak,
		BestStreak:     s.bestStreak,
		QuestionIndex:  s.index,
		QuestionCount:  len(s.questions),
		TimeLeft:       s.timeLeft,
		SelectedAnswer: s.selected,
		History:        append([]HistoryEntry(nil), s.history...),
		Host:           s.host,
		VoiceEnabled:   s.voiceEnabled,
		Loading:        s.loading,
		Error:          s.lastError,
	}
	if s.index < len(s.questions) && (s.state == StateIntro || s.state == StatePlaying || s.state == StateQuestionReview) {
		q := s.questions[s.index]
		view := &QuestionView{
			ID:         q.ID,
			Question:   q.Question,
			Options:    append([]string(nil), q.Options...),
			Category:   q.Category,
			Difficulty: q.Difficulty,
		}
		// reveal only once the question is resolved
		if s.state == StateQuestionReview {
			view.CorrectAnswer = q.CorrectAnswer
			view.Explanation = q.Explanation
		}
		snap.Question = view
	}
	if len(s.questions) > 0 {
		correct := 0
		for _, h := range s.history {
			if h.IsCorrect {
				correct++
			}
		}
		snap.Accuracy = int(math.Round(float64(correct) / float64(len(s.questions)) * 100))
	}
	return snap
}

// State returns the current state without the full snapshot.
func (s *SessionCtx) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
