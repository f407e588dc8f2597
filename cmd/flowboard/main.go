// Command flowboard serves a board over HTTP, edits it in the terminal, or
// exports it as an image.
//
//	flowboard serve  [-config flowboard.yaml] [-board key]
//	flowboard tui    [-config flowboard.yaml] [-board key] [-measurer cell] [-log flowboard.log]
//	flowboard export [-config flowboard.yaml] [-board key] -o board.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowboard/infrastructure/config"
	"flowboard/infrastructure/di"
	"flowboard/infrastructure/export"
	"flowboard/infrastructure/observability"
	"flowboard/infrastructure/textmetrics"
	"flowboard/interfaces/http/rest"
	"flowboard/interfaces/http/rest/handlers"
	"flowboard/interfaces/terminal"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	command := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}
	switch command {
	case "serve":
		return serve(args)
	case "tui":
		return tui(args)
	case "export":
		return exportBoard(args)
	default:
		return fmt.Errorf("unknown command %q (want serve, tui or export)", command)
	}
}

// common flags shared by every command
type options struct {
	configPath string
	board      string
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "base configuration file (default "+config.DefaultPath+")")
	fs.StringVar(&o.board, "board", "", "board key, overriding the configuration")
}

func (o *options) load() (*config.Config, *config.Loader, error) {
	loader := config.NewLoader(o.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.board != "" {
		cfg.Board.Key = o.board
	}
	return cfg, loader, nil
}

func serve(args []string) error {
	var opts options
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, loader, err := opts.load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(string(cfg.Environment), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, cleanup, err := di.InitializeContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer cleanup()

	stopWatch := watch(loader, cfg, container, logger)
	defer stopWatch()

	router := rest.NewRouter(
		container.CommandBus,
		container.Session,
		newExporter(logger),
		container.Metrics,
		container.Tracing.Tracer(),
		cfg.Server,
		logger,
	)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.Server.Addr),
			zap.String("environment", string(cfg.Environment)),
			zap.String("board", cfg.Board.Key),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	return nil
}

func tui(args []string) error {
	var opts options
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	opts.register(fs)
	measurer := fs.String("measurer", "cell", "text measurer: font, cell or none")
	logPath := fs.String("log", "flowboard.log", "log file; the terminal owns stdout and stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, loader, err := opts.load()
	if err != nil {
		return err
	}
	cfg.Fonts.Measurer = *measurer
	logger, err := observability.NewFileLogger(*logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, cleanup, err := di.InitializeContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer cleanup()

	stopWatch := watch(loader, cfg, container, logger)
	defer stopWatch()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	app := terminal.NewApp(screen, container.Session, container.CommandBus, logger, terminal.DefaultOptions())
	return app.Run(ctx)
}

func exportBoard(args []string) error {
	var opts options
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	opts.register(fs)
	out := fs.String("o", "board.png", "output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := opts.load()
	if err != nil {
		return err
	}
	// export measures with the same faces it draws with
	cfg.Fonts.Measurer = "font"
	logger, err := observability.NewLogger(string(cfg.Environment), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	container, cleanup, err := di.InitializeContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer cleanup()

	fonts, err := textmetrics.NewFontMeasurer()
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *out, err)
	}
	renderer := export.NewRenderer(fonts, export.DefaultOptions())
	if err := renderer.WritePNG(f, container.Session.Snapshot()); err != nil {
		f.Close()
		return fmt.Errorf("failed to export board: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("Board exported", zap.String("board", cfg.Board.Key), zap.String("path", *out))
	return nil
}

// watch hot reloads the editor tunables and returns a stop func. A watcher
// that cannot start is logged, not fatal.
func watch(loader *config.Loader, cfg *config.Config, container *di.Container, logger *zap.Logger) func() {
	watcher, err := config.NewWatcher(loader, cfg, logger)
	if err != nil {
		logger.Warn("Configuration hot reloading disabled", zap.Error(err))
		return func() {}
	}
	watcher.OnChange(func(next *config.Config) {
		container.Session.UpdateConfig(next.EditorDomain())
	})
	return watcher.Stop
}

// newExporter builds the PNG exporter, or nil when the embedded fonts cannot be parsed
func newExporter(logger *zap.Logger) handlers.Exporter {
	fonts, err := textmetrics.NewFontMeasurer()
	if err != nil {
		logger.Warn("Board export disabled", zap.Error(err))
		return nil
	}
	return export.NewRenderer(fonts, export.DefaultOptions())
}
