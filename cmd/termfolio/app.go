package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/termfolio/internal/analytics"
	"github.com/verte-zerg/termfolio/internal/chat"
	"github.com/verte-zerg/termfolio/internal/content"
	"github.com/verte-zerg/termfolio/internal/fetch"
	"github.com/verte-zerg/termfolio/internal/logging"
	"github.com/verte-zerg/termfolio/internal/model"
	"github.com/verte-zerg/termfolio/internal/prefs"
	"github.com/verte-zerg/termfolio/internal/shield"
	"github.com/verte-zerg/termfolio/internal/store"
	"github.com/verte-zerg/termfolio/internal/terminal"
)

// app holds the collaborators shared by the terminal commands.
type app struct {
	logger    *zap.Logger
	store     *store.Store
	portfolio *content.Portfolio
	shield    *shield.Shield
	chat      *chat.Service
	tracker   *analytics.Tracker
	prefs     model.Preferences
	recall    *terminal.Recall
}

// openApp wires storage, content and chat from the resolved settings. console
// selects a stderr logger instead of the log file.
func openApp(ctx context.Context, console bool) (*app, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if console {
		logger, err = logging.NewConsole(logLevel)
	} else {
		logger, err = logging.NewFile(logFile, logLevel)
	}
	if err != nil {
		return nil, err
	}

	p, err := loadPortfolio()
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	a := &app{logger: logger, store: st, portfolio: p}

	a.shield, err = shield.New(shieldRules, p.Topics()...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load shield rules: %w", err)
	}

	provider, err := chat.NewProvider(ctx, providerConfig(), p)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to configure chat: %w", err)
	}
	a.chat = chat.NewService(provider, a.shield, p, logger)
	a.chat.SetTimeout(time.Duration(chatTimeoutSec) * time.Second)

	var kv analytics.KV
	if analyticsEnabled {
		kv = st
	}
	var remote analytics.Poster
	if analyticsEnabled && analyticsEndpoint != "" {
		remote = fetch.New(analyticsEndpoint)
	}
	a.tracker = analytics.NewTracker(ctx, kv, remote, logger)

	a.prefs, err = prefs.Load(ctx, st)
	if err != nil {
		logger.Warn("failed to load preferences; using defaults", zap.Error(err))
	}
	if t, ok := prefs.ParseTheme(strings.ToLower(themeFlag)); ok {
		a.prefs.Theme = t
	}

	a.recall, err = terminal.LoadRecall(ctx, st, historySize)
	if err != nil {
		logger.Warn("failed to load command history", zap.Error(err))
	}

	logger.Debug("termfolio ready",
		zap.String("provider", provider.Name()),
		zap.String("db", dbPath),
		zap.Bool("analytics", analyticsEnabled))
	return a, nil
}

func loadPortfolio() (*content.Portfolio, error) {
	if contentPath == "" {
		return content.Default()
	}
	p, err := content.Load(contentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	return p, nil
}

func providerConfig() chat.ProviderConfig {
	return chat.ProviderConfig{
		Kind:        chatProvider,
		Endpoint:    chatEndpoint,
		Model:       chatModel,
		APIKey:      chatAPIKey,
		BaseURL:     chatBaseURL,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
		Timeout:     time.Duration(chatTimeoutSec) * time.Second,
	}
}

// Close flushes analytics, closes the database and syncs the logger.
func (a *app) Close() {
	if a.tracker != nil {
		a.tracker.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logErrf("failed to close db: %v\n", err)
		}
	}
	_ = a.logger.Sync()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
