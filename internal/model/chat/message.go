package chat

import "time"

// Role tags the speaker of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Greeting is the assistant turn every transcript starts with.
const Greeting = "Hi! I'm DeepSeek. How can I help you code today? 💻"

// Turn is one message of a conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SeedTurn returns the greeting turn a new transcript is created with.
func SeedTurn() Turn {
	return Turn{Role: RoleAssistant, Content: Greeting, CreatedAt: time.Now().UTC()}
}

// Transcript is the append-only, ordered turn log of one session.
// It is not safe for concurrent use; callers serialize access.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates a transcript holding the supplied turns in order.
func NewTranscript(seed ...Turn) *Transcript {
	turns := make([]Turn, 0, len(seed)+16)
	turns = append(turns, seed...)
	return &Transcript{turns: turns}
}

// Append adds a turn at the end. Role alternation is not validated.
func (t *Transcript) Append(turn Turn) {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	t.turns = append(t.turns, turn)
}

// Snapshot returns a copy of all turns in insertion order.
func (t *Transcript) Snapshot() []Turn {
	copied := make([]Turn, len(t.turns))
	copy(copied, t.turns)
	return copied
}

// Len reports the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}
