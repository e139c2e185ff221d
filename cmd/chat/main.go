// Command chat is the terminal client: it keeps conversations in the
// configured store and sends messages through the proxy server.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lingochain/lingochain/internal/client"
	"github.com/lingochain/lingochain/internal/config"
	"github.com/lingochain/lingochain/internal/logging"
	"github.com/lingochain/lingochain/internal/service/session"
	"github.com/lingochain/lingochain/internal/storage"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chat",
		Short:        "Chat with the LingoChain tutor from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}

			level := cfg.Log.Level
			if os.Getenv("LOG_LEVEL") == "" && !cmd.Flags().Changed("log-level") {
				// keep the REPL readable unless asked otherwise
				level = "warn"
			}
			if err := logging.Setup(level, cfg.Log.Format); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("api-url", "", "chat endpoint of the proxy server (CHAT_API_URL)")
	flags.String("store", "", "storage backend: memory, file, bolt, sqlite or redis (CHAT_STORE)")
	flags.String("store-path", "", "file, bolt or sqlite location (CHAT_STORE_PATH)")
	flags.String("redis-addr", "", "redis address for the redis backend (REDIS_ADDR)")
	flags.String("log-level", "", "log level (LOG_LEVEL)")
	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.Client.APIURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("store") {
		backend, _ := flags.GetString("store")
		cfg.Storage.Backend = backend
		if !flags.Changed("store-path") && os.Getenv("CHAT_STORE_PATH") == "" {
			cfg.Storage.Path = config.DefaultStorePath(backend)
		}
	}
	if flags.Changed("store-path") {
		cfg.Storage.Path, _ = flags.GetString("store-path")
	}
	if flags.Changed("redis-addr") {
		cfg.Storage.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}

	if _, err := url.ParseRequestURI(cfg.Client.APIURL); err != nil {
		return errors.Wrapf(err, "invalid api url %q", cfg.Client.APIURL)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close()

	proxy := client.New(cfg.Client.APIURL)

	opts := session.DefaultOptions()
	opts.Key = cfg.Storage.Key
	opts.BannerTTL = cfg.Client.BannerTTL
	opts.ClearAllDelay = cfg.Client.ClearAllDelay
	opts.FailureBanner = failureBanner(cfg.Client.APIURL)

	sess, err := session.Open(ctx, store, proxy, opts)
	if err != nil {
		return errors.Wrap(err, "open session")
	}
	defer sess.Close()

	log.Debug().
		Str("store", cfg.Storage.Backend).
		Str("api", proxy.URL()).
		Msg("chat client ready")

	term := newTerminal(historyPath(cfg.Storage.Path))
	defer term.Close()

	r := newREPL(sess, os.Stdout, term.Confirm)
	return r.Loop(ctx, term)
}

func failureBanner(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "Failed to get response. Make sure the server is running."
	}
	return fmt.Sprintf("Failed to get response. Make sure the server is running on %s.", u.Host)
}

func historyPath(storePath string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".lingochain", "chat_history")
	}
	if storePath != "" {
		return filepath.Join(filepath.Dir(storePath), "chat_history")
	}
	return filepath.Join(os.TempDir(), "lingochain_chat_history")
}
