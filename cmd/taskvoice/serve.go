package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Jayphen/taskvoice/internal/auth"
	"github.com/Jayphen/taskvoice/internal/config"
	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/logging"
	"github.com/Jayphen/taskvoice/internal/redis"
	"github.com/Jayphen/taskvoice/internal/server"
	"github.com/Jayphen/taskvoice/internal/session"
	"github.com/Jayphen/taskvoice/internal/voice"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the voice webhook server",
		Long: `Serve the voice webhook on POST /v1/voice, the interpretation debug
endpoint on POST /v1/interpret and a health check on GET /healthz.

Conversation state is kept in Redis when redis_url is configured and in
memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Get()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, root)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, root *rootFlags) error {
	log := logging.WithCommand("serve")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	src, err := openSources(ctx, root)
	if err != nil {
		return err
	}
	defer src.Close()

	store, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	sessions := session.NewManager(store, cfg.SessionTTL)
	defer sessions.Close()

	var tokens *auth.Tokens
	if cfg.Auth.JWTSecret != "" {
		tokens, err = auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
	} else {
		log.Warn("auth.jwt_secret is not set; accepting requests without account linking")
	}

	parser := interpret.DefaultParser()
	handler := voice.NewHandler(src, sessions, voice.Options{
		Location: loc,
		Tokens:   tokens,
		Parser:   parser,
	})

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		Tokens:         tokens,
		Location:       loc,
		Parser:         parser,
	}, handler, log)

	log.WithFields(map[string]interface{}{
		"addr":    cfg.Server.Addr,
		"sources": len(src.Sources()),
	}).Info("taskvoice server starting")

	return srv.Run(ctx)
}

// openSessionStore picks Redis when configured and memory otherwise.
func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(), nil
	}
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}
