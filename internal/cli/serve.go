package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/internal/server"
	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/session"
	"github.com/matzehuels/familytree/pkg/sheet"
	"github.com/matzehuels/familytree/pkg/state"
	"github.com/matzehuels/familytree/pkg/storage"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
		flags viewFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [source]",
		Short: "Serve the family tree over an HTTP API",
		Long: `Serve the family tree over an HTTP API.

Each client gets a view session (X-Session-ID header) whose view state is kept
in Redis when cache.redis_addr is configured, or in files otherwise. Shared
views are archived to MongoDB when storage.mongo_uri is configured.

With --watch a local source file is reloaded whenever it changes; open views
keep what they show.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := c.sourceArg(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), source, addr, watch, flags)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload a local source file when it changes")
	addViewFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, source, addr string, watch bool, flags viewFlags) error {
	if watch && sheet.IsURL(source) {
		return fmt.Errorf("--watch needs a local source file, got %s", source)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	sessions, err := c.newSessionStore()
	if err != nil {
		runner.Close()
		return err
	}
	archive, err := c.newArchive(ctx)
	if err != nil {
		runner.Close()
		return err
	}

	srv, err := server.New(ctx, server.Options{
		View:       c.options(source, flags),
		Runner:     runner,
		Sessions:   sessions,
		Shares:     state.NewShareStore(runner.Cache, shareKeyer(runner.Keyer, source), c.Config.Server.ShareTTL.Duration),
		Archive:    archive,
		SessionTTL: c.Config.Server.SessionTTL.Duration,
		Logger:     c.Logger,
	})
	if err != nil {
		runner.Close()
		_ = archive.Close(context.Background())
		return err
	}
	defer srv.Close()

	if watch {
		w := server.NewWatcher(source, c.Logger, func(ctx context.Context) {
			if err := srv.Reload(ctx); err != nil {
				c.Logger.Error("reload failed", "err", err)
			}
		})
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.Logger.Error("watcher stopped", "err", err)
			}
		}()
	}

	printInfo("Serving %s on http://%s", source, addr)
	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// shareKeyer keeps the share links of each source apart when several
// servers use one Redis.
func shareKeyer(inner cache.Keyer, source string) cache.Keyer {
	return cache.NewScopedKeyer(inner, "tree:"+cache.Hash([]byte(source))[:12]+":")
}

// newSessionStore returns a Redis store when Redis is configured and a
// file store otherwise.
func (c *CLI) newSessionStore() (session.Store, error) {
	if client := c.newRedisClient(); client != nil {
		return session.NewRedisStore(client, c.Config.Cache.RedisPrefix), nil
	}
	return session.NewFileStore(c.Config.Server.SessionDir)
}

// newArchive returns the MongoDB archive when configured and an in-memory
// one otherwise.
func (c *CLI) newArchive(ctx context.Context) (storage.Archive, error) {
	sc := c.Config.Storage
	if sc.MongoURI == "" {
		return storage.NewMemoryArchive(), nil
	}
	a, err := storage.NewMongoArchive(ctx, storage.MongoOptions{
		URI:      sc.MongoURI,
		Database: sc.MongoDatabase,
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("archiving snapshots", "database", sc.MongoDatabase)
	return a, nil
}
