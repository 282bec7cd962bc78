package render

import (
	"time"

	"github.com/zhouzirui/code-companion/backend/internal/model/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/companion"
)

// Turn is a transcript turn as shipped to the web page.
type Turn struct {
	Role      chat.Role `json:"role"`
	Content   string    `json:"content"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"createdAt"`
}

// View is companion.View with rendered turns.
type View struct {
	SessionID string          `json:"sessionId"`
	State     companion.State `json:"state"`
	Busy      bool            `json:"busy"`
	Model     string          `json:"model"`
	Turns     []Turn          `json:"turns"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"errorKind,omitempty"`
}

// NewTurn renders a single turn. Only assistant output is treated as markdown.
func NewTurn(turn chat.Turn) Turn {
	rendered := Text(turn.Content)
	if turn.Role == chat.RoleAssistant {
		rendered = Markdown(turn.Content)
	}
	return Turn{
		Role:      turn.Role,
		Content:   turn.Content,
		HTML:      rendered,
		CreatedAt: turn.CreatedAt,
	}
}

// NewView renders every turn of v.
func NewView(v companion.View) View {
	turns := make([]Turn, 0, len(v.Turns))
	for _, turn := range v.Turns {
		turns = append(turns, NewTurn(turn))
	}
	return View{
		SessionID: v.SessionID,
		State:     v.State,
		Busy:      v.Busy(),
		Model:     v.Model,
		Turns:     turns,
		Error:     v.Error,
		ErrorKind: v.ErrorKind,
	}
}
