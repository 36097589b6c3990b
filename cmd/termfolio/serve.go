package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/termfolio/internal/chat"
	"github.com/verte-zerg/termfolio/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat and analytics proxy",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	if strings.EqualFold(chatProvider, chat.ProviderRemote) || (chatProvider == "" && chatEndpoint != "") {
		return fmt.Errorf("serve cannot use the remote chat provider; choose local, openai or gemini")
	}
	// The proxy records aggregates itself; it never mirrors to another proxy.
	analyticsEndpoint = ""

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := os.MkdirAll(filepath.Dir(shieldRules), 0o755); err != nil {
		return fmt.Errorf("failed to create shield rules dir: %w", err)
	}

	a.logger.Info("starting proxy",
		zap.String("addr", serveAddr),
		zap.String("provider", a.chat.Provider().Name()),
		zap.String("shield_rules", shieldRules))

	srv := server.New(a.chat, a.store, a.logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, serveAddr)
	})
	g.Go(func() error {
		return a.shield.Watch(gctx, shieldRules, a.logger)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
