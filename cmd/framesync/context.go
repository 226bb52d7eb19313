package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"framesync/internal/config"
	"framesync/internal/logging"
	"framesync/internal/probecache"
	"framesync/internal/runstore"
	"framesync/internal/services"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor builds the command logger once. Console output goes to the
// command's stderr so stdout stays clean for tables and JSON.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		var console io.Writer = cmd.ErrOrStderr()
		logger, err := logging.NewFromConfig(c.config, console)
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "warn", Writer: console})
			logger.Warn("falling back to console logging", logging.Error(err))
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) probeCache(cmd *cobra.Command) *probecache.Cache {
	if c.config == nil || !c.config.Probe.CacheEnabled {
		return probecache.New("", nil)
	}
	return probecache.New(c.config.Paths.CacheDir, c.loggerFor(cmd))
}

func (c *commandContext) withStore(fn func(*runstore.Store) error) error {
	store, err := runstore.Open(c.config)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
