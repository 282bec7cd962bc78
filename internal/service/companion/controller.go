package companion

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/zhouzirui/code-companion/backend/internal/model/catalog"
	"github.com/zhouzirui/code-companion/backend/internal/model/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/code-companion/backend/internal/service/chat"
)

var (
	ErrBusy         = errors.New("a submission is already in progress")
	ErrEmptyInput   = errors.New("message is empty")
	ErrUnknownModel = errors.New("model is not in the catalog")
)

// State is a step of the per-submission state machine.
type State string

const (
	StateIdle         State = "idle"
	StateUserAppended State = "user_appended"
	StateDispatching  State = "dispatching"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// Completer turns a transcript snapshot into generated text.
type Completer interface {
	Complete(ctx context.Context, modelID string, turns []chat.Turn) (string, error)
}

// View is what a surface needs to draw the session after a transition.
type View struct {
	SessionID string      `json:"sessionId"`
	State     State       `json:"state"`
	Model     string      `json:"model"`
	Turns     []chat.Turn `json:"turns"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"errorKind,omitempty"`
}

// Busy reports whether a completion is in flight.
func (v View) Busy() bool {
	return v.State == StateUserAppended || v.State == StateDispatching
}

// Renderer draws a View. Render is called synchronously on the submitting goroutine.
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(View)

// Render calls f(v).
func (f RendererFunc) Render(v View) { f(v) }

// Controller wires transcript, dispatcher and display surface for one session.
type Controller struct {
	sessionID string
	chats     *chatservice.Service
	completer Completer
	catalog   catalog.Store

	mu       sync.Mutex
	busy     bool
	state    State
	lastErr  error
	renderer *attachment
}

// attachment identifies one Attach call; detach compares attachments, not
// renderers, since func-backed renderers are not comparable.
type attachment struct {
	r Renderer
}

func newController(sessionID string, chats *chatservice.Service, completer Completer, models catalog.Store) *Controller {
	return &Controller{
		sessionID: sessionID,
		chats:     chats,
		completer: completer,
		catalog:   models,
		state:     StateIdle,
	}
}

// SessionID identifies the session this controller drives.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Attach installs the renderer that receives every transition and returns a
// function restoring the previous one.
func (c *Controller) Attach(r Renderer) (detach func()) {
	a := &attachment{r: r}
	c.mu.Lock()
	prev := c.renderer
	c.renderer = a
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		if c.renderer == a {
			c.renderer = prev
		}
		c.mu.Unlock()
	}
}

// Submit runs one user submission to completion: append the user turn,
// dispatch the full transcript, append the reply. On dispatcher failure the
// user turn stays in the transcript and the *ai.Error is returned alongside
// the failed view.
func (c *Controller) Submit(ctx context.Context, text string) (View, error) {
	if strings.TrimSpace(text) == "" {
		return c.View(ctx), ErrEmptyInput
	}

	if !c.acquire() {
		return c.View(ctx), ErrBusy
	}
	defer c.release()
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()

	session, err := c.chats.GetSession(ctx, c.sessionID)
	if err != nil {
		c.transition(StateIdle, nil)
		return View{SessionID: c.sessionID, State: StateIdle}, err
	}

	if err := c.chats.AppendTurn(ctx, c.sessionID, chat.Turn{Role: chat.RoleUser, Content: text}); err != nil {
		c.transition(StateIdle, nil)
		return c.View(ctx), err
	}
	c.emit(ctx, StateUserAppended, nil)

	snapshot, err := c.chats.LoadTranscript(ctx, c.sessionID)
	if err != nil {
		c.transition(StateIdle, nil)
		return c.View(ctx), err
	}
	c.emit(ctx, StateDispatching, nil)

	reply, err := c.completer.Complete(ctx, session.Model, snapshot)
	if err != nil {
		log.Printf("[companion] session=%s submission failed: %v", c.sessionID, err)
		c.emit(ctx, StateFailed, err)
		c.emit(ctx, StateIdle, err)
		return c.View(ctx), err
	}

	if err := c.chats.AppendTurn(ctx, c.sessionID, chat.Turn{Role: chat.RoleAssistant, Content: reply}); err != nil {
		c.transition(StateIdle, nil)
		return c.View(ctx), err
	}
	c.emit(ctx, StateCompleted, nil)
	c.emit(ctx, StateIdle, nil)
	return c.View(ctx), nil
}

// SelectModel switches the session to another catalog model.
func (c *Controller) SelectModel(ctx context.Context, modelID string) (View, error) {
	if _, ok := c.catalog.FindByID(modelID); !ok {
		return c.View(ctx), ErrUnknownModel
	}
	if !c.acquire() {
		return c.View(ctx), ErrBusy
	}
	defer c.release()
	if _, err := c.chats.SelectModel(ctx, c.sessionID, modelID); err != nil {
		return c.View(ctx), err
	}
	c.render(ctx)
	return c.View(ctx), nil
}

// Reset returns the transcript to its seeded state.
func (c *Controller) Reset(ctx context.Context) (View, error) {
	if !c.acquire() {
		return c.View(ctx), ErrBusy
	}
	defer c.release()
	if err := c.chats.ResetTranscript(ctx, c.sessionID); err != nil {
		return c.View(ctx), err
	}
	c.transition(StateIdle, nil)
	c.render(ctx)
	return c.View(ctx), nil
}

// Refresh renders the current view without changing state.
func (c *Controller) Refresh(ctx context.Context) View {
	c.render(ctx)
	return c.View(ctx)
}

// View snapshots the session for display.
func (c *Controller) View(ctx context.Context) View {
	c.mu.Lock()
	state, lastErr := c.state, c.lastErr
	c.mu.Unlock()

	view := View{SessionID: c.sessionID, State: state}
	if session, err := c.chats.GetSession(ctx, c.sessionID); err == nil {
		view.Model = session.Model
	}
	if turns, err := c.chats.LoadTranscript(ctx, c.sessionID); err == nil {
		view.Turns = turns
	}
	if lastErr != nil {
		view.Error = errorMessage(lastErr)
		view.ErrorKind = ai.KindOf(lastErr).String()
	}
	return view
}

// acquire claims the session for one mutating operation.
func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Controller) transition(state State, err error) {
	c.mu.Lock()
	c.state = state
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Controller) emit(ctx context.Context, state State, err error) {
	c.mu.Lock()
	c.state = state
	if err != nil {
		c.lastErr = err
	}
	c.mu.Unlock()
	c.render(ctx)
}

func (c *Controller) render(ctx context.Context) {
	c.mu.Lock()
	a := c.renderer
	c.mu.Unlock()
	if a == nil {
		return
	}
	a.r.Render(c.View(ctx))
}

func errorMessage(err error) string {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		return aiErr.UserMessage()
	}
	return err.Error()
}
