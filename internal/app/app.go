package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/cellode/internal/ctxlog"
	"github.com/vk/cellode/internal/scenario"
	"github.com/vk/cellode/internal/sysmodel"
	"github.com/vk/cellode/internal/translator"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. Logs go to errW so
// the assembled system on outW stays machine-readable.
func NewApp(outW, errW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, errW)
	logger.Debug("Logger configured successfully.")
	return &App{outW: outW, errW: errW, logger: logger, config: config}
}

// Run executes the translation: read the document, build the model, apply
// any scenario overrides, and print the assembled system.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	src, err := os.ReadFile(a.config.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to read model document: %w", err)
	}

	model, err := translator.Build(ctx, src)
	if err != nil {
		// Translation errors surface unchanged; the error type names the
		// failing stage.
		return err
	}
	a.logger.Info("Model translated.",
		"model", model.Name(),
		"states", model.States().Len(),
		"parameters", model.Parameters().Len())

	if a.config.ScenarioPath != "" {
		sc, err := scenario.Load(ctx, a.config.ScenarioPath)
		if err != nil {
			return err
		}
		if err := sc.Apply(ctx, model); err != nil {
			return err
		}
		a.logger.Info("Scenario applied.", "overrides", len(sc.Overrides))
	}

	return a.print(model)
}

func (a *App) print(model *sysmodel.Model) error {
	if a.config.Format == "json" {
		return printJSON(a.outW, model)
	}
	return printText(a.outW, model)
}
