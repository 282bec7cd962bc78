package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/code-companion/backend/internal/app"
	"github.com/zhouzirui/code-companion/backend/internal/config"
	"github.com/zhouzirui/code-companion/backend/internal/ui"
)

func main() {
	baseURL := flag.String("base-url", "", "override OLLAMA_BASE_URL")
	modelID := flag.String("model", "", "initial model id (defaults to the first catalog entry)")
	logFile := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	_ = godotenv.Load()
	if *baseURL != "" {
		_ = os.Setenv("OLLAMA_BASE_URL", *baseURL)
	}

	// log lines would corrupt the alternate screen
	if *logFile != "" {
		f, err := tea.LogToFile(*logFile, "companion")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	sessions, err := app.NewManager(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize companion (is ollama running at %s?): %v\n", cfg.AI.BaseURL, err)
		os.Exit(1)
	}

	ctrl, err := sessions.Open(ctx, *modelID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open session: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = sessions.Close(ctx, ctrl.SessionID()) }()

	m := ui.NewModel(ctx, ctrl, sessions.Catalog())
	defer m.Detach()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
