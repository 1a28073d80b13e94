package main

import (
	"context"
	"fmt"
	"os"

	"film-ticket-desk/config"
	"film-ticket-desk/internal/app"
	"film-ticket-desk/internal/tui"
	"film-ticket-desk/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
)

func main() {
	cfg := config.LoadConfig()

	var logOutput string
	flag.StringVar(&cfg.FilmsAPI.BaseURL, "api", cfg.FilmsAPI.BaseURL, "films API base URL")
	flag.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "override store: redis, postgres or memory")
	flag.IntVar(&cfg.App.FirstFilmID, "first-film", cfg.App.FirstFilmID, "film shown at startup")
	flag.StringVar(&logOutput, "log-output", "", "log file path (logs are discarded when empty)")
	flag.Parse()

	// 終端機由 TUI 使用，log 只能寫到檔案
	var outputs []string
	if logOutput != "" {
		outputs = []string{logOutput}
	}
	if err := logger.Configure(cfg.App.LogLevel, outputs); err != nil {
		fmt.Fprintf(os.Stderr, "filmdesk: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "filmdesk: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	desk, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer desk.Close()

	if err := desk.Start(ctx); err != nil {
		return err
	}

	model := tui.New(desk.Dispatcher, desk.Dispatcher.Subscribe())
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
