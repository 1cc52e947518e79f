package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vujjini/bm-assist/internal/backend"
	"github.com/vujjini/bm-assist/internal/config"
	"github.com/vujjini/bm-assist/internal/domain"
	"github.com/vujjini/bm-assist/internal/logging"
	"github.com/vujjini/bm-assist/internal/notify"
	"github.com/vujjini/bm-assist/internal/session"
	"github.com/vujjini/bm-assist/internal/ui"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg.Log)
	defer logger.Sync()

	// Initialize backend client
	client := backend.NewClient(backend.Config{
		BaseURL:        cfg.Backend.BaseURL,
		RequestTimeout: cfg.Backend.RequestTimeout,
		UploadTimeout:  cfg.Backend.UploadTimeout,
	}, logger)

	// Notification center and connection monitor are the only process-wide
	// state; controllers mutate them through callbacks only.
	center := notify.NewCenter(cfg.Notify.TTL)
	defer center.Close()

	monitor := notify.NewMonitor(client, cfg.Monitor.Interval, logger)

	// Initialize session controllers
	chat := session.NewChatController(client, center, logger)
	upload := session.NewUploadController(client, center, logger)

	model := ui.New(cfg, client, chat, upload, center, monitor, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	center.SetOnChange(func() {
		program.Send(ui.ToastsChangedMsg{})
	})
	monitor.SetOnChange(func(state domain.ConnectionState) {
		program.Send(ui.ConnChangedMsg{State: state})
	})

	monitor.Start()
	defer monitor.Stop()

	logger.Info("Starting Building Manager Assistant",
		zap.String("backend", cfg.Backend.BaseURL),
	)

	if _, err := program.Run(); err != nil {
		logger.Fatal("UI exited with error", zap.Error(err))
	}
}
