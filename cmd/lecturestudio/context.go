package main

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/yungbote/lecture-studio/internal/app"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     app.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p
		}
	}
	return strings.TrimSpace(os.Getenv("LECTURESTUDIO_CONFIG"))
}

func (c *commandContext) ensureConfig() (app.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = app.LoadConfig(c.configPath())
	})
	return c.config, c.configErr
}

// withApp builds the application for one command and tears it down afterwards.
func (c *commandContext) withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx, stop := app.SignalContext(ctx)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
