// Package cli implements the familytree command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familytree/internal/config"
	"github.com/matzehuels/familytree/pkg/buildinfo"
	"github.com/matzehuels/familytree/pkg/cache"
	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/httputil"
	"github.com/matzehuels/familytree/pkg/pipeline"
	"github.com/matzehuels/familytree/pkg/sheet"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read in the root command's
// PersistentPreRunE.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output. Used in tests.
func (c *CLI) SetOutput(w io.Writer) {
	stdout = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Familytree lays out and explores family trees kept in a spreadsheet",
		Long:         `Familytree reads a family spreadsheet (a CSV export or local file), builds the member/union graph and lays out the part of it you choose to see. Views can be expanded, collapsed, shared and rendered, and edits are written back to the sheet.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	client := httputil.NewClient(store, c.Config.Cache.TTL.Duration, headers)
	return pipeline.NewRunner(store, nil, sheet.NewLoader(client, c.Logger), c.Logger), nil
}

// newCache returns the configured cache: Redis when an address is set,
// otherwise files under the cache directory.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	if cc.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
			Prefix:   cc.RedisPrefix,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "redis %s", cc.RedisAddr)
		}
		return rc, nil
	}
	fc, err := cache.NewFileCache(cc.Dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", cc.Dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// newRedisClient returns a client for the configured Redis, or nil.
func (c *CLI) newRedisClient() *redis.Client {
	cc := c.Config.Cache
	if cc.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cc.RedisAddr,
		Password: cc.RedisPassword,
		DB:       cc.RedisDB,
	})
}

// =============================================================================
// Source Helpers
// =============================================================================

// sourceArg returns the source named on the command line, falling back
// to the configured sheet URL.
func (c *CLI) sourceArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.Config.Sheet.URL != "" {
		return c.Config.Sheet.URL, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "no source given and no sheet.url configured")
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
