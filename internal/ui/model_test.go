package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/code-companion/backend/internal/model/catalog"
	"github.com/zhouzirui/code-companion/backend/internal/model/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/code-companion/backend/internal/service/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/companion"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, string, []chat.Turn) (string, error) {
	return s.reply, s.err
}

func newTestModel(t *testing.T, completer companion.Completer) Model {
	t.Helper()
	models := catalog.NewMemoryStore(catalog.Seed())
	mgr := companion.NewManager(chatservice.NewService(), completer, models)
	ctrl, err := mgr.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	m := NewModel(context.Background(), ctrl, models)
	t.Cleanup(m.Detach)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func TestRenderTranscriptIncludesEveryTurn(t *testing.T) {
	out := renderTranscript([]chat.Turn{
		chat.SeedTurn(),
		{Role: chat.RoleUser, Content: "write a fibonacci function"},
		{Role: chat.RoleAssistant, Content: "use recursion"},
	}, 80)

	for _, want := range []string{"You", "DeepSeek", "fibonacci", "recursion"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered transcript missing %q", want)
		}
	}
}

func TestSubmitAppendsReply(t *testing.T) {
	m := newTestModel(t, &stubCompleter{reply: "def fib(n): ..."})
	m = typeText(m, "write a fibonacci function")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.input.Value())
	}

	done, ok := cmd().(submitDoneMsg)
	if !ok {
		t.Fatal("expected submitDoneMsg")
	}
	updated, _ = m.Update(done)
	m = updated.(Model)

	if len(m.view.Turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(m.view.Turns))
	}
	if m.view.Busy() {
		t.Fatal("expected idle after completion")
	}
}

func TestSubmitBlankIsIgnored(t *testing.T) {
	m := newTestModel(t, &stubCompleter{reply: "x"})
	m = typeText(m, "   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for blank input")
	}
}

func TestSubmitFailureShowsInlineError(t *testing.T) {
	m := newTestModel(t, &stubCompleter{err: &ai.Error{Kind: ai.KindConnection}})
	m = typeText(m, "hello")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	if len(m.view.Turns) != 2 {
		t.Fatalf("expected dangling user turn, got %d turns", len(m.view.Turns))
	}
	if !strings.Contains(m.statusLine(), "Failed to connect") {
		t.Fatalf("expected connection error in status line, got %q", m.statusLine())
	}
}

func TestTabCyclesModel(t *testing.T) {
	m := newTestModel(t, &stubCompleter{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.view.Model != "deepseek-r1:3b" {
		t.Fatalf("expected second model, got %s", m.view.Model)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.view.Model != "deepseek-r1:1.5b" {
		t.Fatalf("expected wrap to first model, got %s", m.view.Model)
	}
}

func TestResetRestoresGreeting(t *testing.T) {
	m := newTestModel(t, &stubCompleter{reply: "ok"})
	m = typeText(m, "hello")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = updated.(Model)
	if len(m.view.Turns) != 1 || m.view.Turns[0].Content != chat.Greeting {
		t.Fatalf("expected greeting only, got %+v", m.view.Turns)
	}
}

func TestRendererForwardsTransitions(t *testing.T) {
	m := newTestModel(t, &stubCompleter{reply: "ok"})

	if _, err := m.ctrl.Submit(context.Background(), "hello"); err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	msg := waitForView(m.views)()
	v, ok := msg.(viewMsg)
	if !ok || v.view.State != companion.StateUserAppended {
		t.Fatalf("expected first forwarded view to be user_appended, got %+v", msg)
	}
}
