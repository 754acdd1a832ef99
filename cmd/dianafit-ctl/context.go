package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/claude/dianafit/internal/app"
	"github.com/claude/dianafit/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.LoadOptional(path)
	})
	return c.config, c.configErr
}

// logger writes to stderr; info-level chatter is hidden unless the config
// asks for debug.
func (c *commandContext) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.config != nil && c.config.Log.SlogLevel() == slog.LevelDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// withApp opens the data directory for the duration of fn.
func (c *commandContext) withApp(cmd *cobra.Command, opts app.Options, fn func(*app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	a, err := app.Open(cmd.Context(), cfg, c.logger(cmd.ErrOrStderr()), opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func isTerminal(w any) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
