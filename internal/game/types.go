package game

type State string

const (
	StateLobby          State = "LOBBY"
	StateIntro          State = "INTRO"
	StatePlaying        State = "PLAYING"
	StateQuestionReview State = "REVIEW"
	StateSummary        State = "SUMMARY"
)

type Personality string

const (
	PersonalitySnarky     Personality = "Snarky"
	PersonalityCozy       Personality = "Cozy"
	PersonalityDramatic   Personality = "Dramatic"
	PersonalityHype       Personality = "Hype"
	PersonalityNerdy      Personality = "Nerdy"
	PersonalityMysterious Personality = "Mysterious"
)

var Personalities = []Personality{
	PersonalitySnarky,
	PersonalityCozy,
	PersonalityDramatic,
	PersonalityHype,
	PersonalityNerdy,
	PersonalityMysterious,
}

func ParsePersonality(s string) (Personality, bool) {
	for _, p := range Personalities {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

type Expression string

const (
	ExpressionIdle     Expression = "idle"
	ExpressionHappy    Expression = "happy"
	ExpressionThinking Expression = "thinking"
	ExpressionShocked  Expression = "shocked"
	ExpressionRoast    Expression = "roast"
)

// CoerceExpression maps unrecognized tokens to idle so a misbehaving
// model can never break the avatar.
func CoerceExpression(s string) Expression {
	switch Expression(s) {
	case ExpressionIdle, ExpressionHappy, ExpressionThinking, ExpressionShocked, ExpressionRoast:
		return Expression(s)
	}
	return ExpressionIdle
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var Categories = []string{
	"Internet Culture",
	"Classic Cinema",
	"Obscure Science",
	"Video Game History",
	"World Mythology",
	"80s Synthpop",
}

const (
	// QuestionTime is the per-question countdown in seconds.
	QuestionTime = 20
	// DefaultQuestionCount is how many questions a session fetches.
	DefaultQuestionCount = 5
	// OptionCount is the fixed number of answer options per question.
	OptionCount = 4
)

// TriviaQuestion is immutable once fetched from the content provider.
type TriviaQuestion struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	Explanation   string     `json:"explanation"`
}

// Valid reports whether the question satisfies the invariants the game
// relies on: exactly four options with the correct answer among them.
func (q TriviaQuestion) Valid() bool {
	if q.Question == "" || q.CorrectAnswer == "" {
		return false
	}
	if len(q.Options) != OptionCount {
		return false
	}
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}

type HistoryEntry struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
	TimeTaken  int    `json:"timeTaken"`
}

type HostState struct {
	Personality Personality `json:"personality"`
	Message     string      `json:"message"`
	Expression  Expression  `json:"expression"`
	IsSpeaking  bool        `json:"isSpeaking"`
}

// Commentary is what the content provider returns for a narration event.
// Expression stays a raw string here and is coerced at apply time.
type Commentary struct {
	Message    string `json:"message"`
	Expression string `json:"expression"`
}

// QuestionView is the per-question data exposed to the rendering layer.
// CorrectAnswer and Explanation stay empty until the question is resolved.
type QuestionView struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	CorrectAnswer string     `json:"correctAnswer,omitempty"`
	Explanation   string     `json:"explanation,omitempty"`
}

// Snapshot is a read-only view of a session for the rendering layer.
type Snapshot struct {
	Code           string         `json:"code"`
	State          State          `json:"state"`
	Personality    Personality    `json:"personality"`
	Category       string         `json:"category"`
	Score          int            `json:"score"`
	Streak         int            `json:"streak"`
	BestStreak     int            `json:"bestStreak"`
	QuestionIndex  int            `json:"questionIndex"`
	QuestionCount  int            `json:"questionCount"`
	TimeLeft       int            `json:"timeLeft"`
	SelectedAnswer string         `json:"selectedAnswer"`
	Question       *QuestionView  `json:"question,omitempty"`
	History        []HistoryEntry `json:"history"`
	Host           HostState      `json:"host"`
	VoiceEnabled   bool           `json:"voiceEnabled"`
	Loading        bool           `json:"loading"`
	Error          string         `json:"error,omitempty"`
	Accuracy       int            `json:"accuracy"`
}
