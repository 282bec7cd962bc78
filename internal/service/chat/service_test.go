package chat_test

import (
	"context"
	"errors"
	"testing"

	model "github.com/zhouzirui/code-companion/backend/internal/model/chat"
	chat "github.com/zhouzirui/code-companion/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "deepseek-r1:1.5b")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.Model != "deepseek-r1:1.5b" {
		t.Fatalf("unexpected model: got %s", got.Model)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCreateSessionRequiresModel(t *testing.T) {
	svc := chat.NewService()
	if _, err := svc.CreateSession(context.Background(), ""); !errors.Is(err, chat.ErrModelRequired) {
		t.Fatalf("expected ErrModelRequired, got %v", err)
	}
}

func TestNewSessionIsSeeded(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "deepseek-r1:1.5b")

	turns, err := svc.LoadTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(turns) != 1 || turns[0].Role != model.RoleAssistant || turns[0].Content != model.Greeting {
		t.Fatalf("unexpected seed transcript: %+v", turns)
	}
}

func TestSessionsDoNotShareTranscripts(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	first, _ := svc.CreateSession(ctx, "deepseek-r1:1.5b")
	second, _ := svc.CreateSession(ctx, "deepseek-r1:1.5b")

	if err := svc.AppendTurn(ctx, first.ID, model.Turn{Role: model.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("AppendTurn err: %v", err)
	}

	firstTurns, _ := svc.LoadTranscript(ctx, first.ID)
	secondTurns, _ := svc.LoadTranscript(ctx, second.ID)
	if len(firstTurns) != 2 || len(secondTurns) != 1 {
		t.Fatalf("transcripts leaked: first=%d second=%d", len(firstTurns), len(secondTurns))
	}
}

func TestResetAndEndSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "deepseek-r1:1.5b")
	_ = svc.AppendTurn(ctx, session.ID, model.Turn{Role: model.RoleUser, Content: "hello"})

	if err := svc.ResetTranscript(ctx, session.ID); err != nil {
		t.Fatalf("ResetTranscript err: %v", err)
	}
	turns, _ := svc.LoadTranscript(ctx, session.ID)
	if len(turns) != 1 {
		t.Fatalf("expected seed only after reset, got %d turns", len(turns))
	}

	if err := svc.EndSession(ctx, session.ID); err != nil {
		t.Fatalf("EndSession err: %v", err)
	}
	if _, err := svc.LoadTranscript(ctx, session.ID); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected transcript gone, got %v", err)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected no sessions, got %d", svc.Count())
	}
}

func TestSelectModel(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "deepseek-r1:1.5b")

	updated, err := svc.SelectModel(ctx, session.ID, "deepseek-r1:3b")
	if err != nil {
		t.Fatalf("SelectModel err: %v", err)
	}
	if updated.Model != "deepseek-r1:3b" {
		t.Fatalf("unexpected model: %s", updated.Model)
	}
	if _, err := svc.SelectModel(ctx, "missing", "deepseek-r1:3b"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
