package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rangestream "github.com/always-cache/range-stream"
	"github.com/always-cache/range-stream/journal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// this is set by goreleaser
var version string

type options struct {
	Config
	configFile     string
	logFilename    string
	verbosityTrace bool
}

func init() {
	if version == "" {
		version = "DEV"
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range-stream",
		Short: "Serve a media file to browsers using HTTP range requests",
		Long: `range-stream serves a single media file on the watch path, in chunks
requested with the Range header, and an HTML page playing it on the index path.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	defaults := defaultConfig()
	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "Path to config file (YAML or TOML)")
	f.IntVar(&opts.Port, "port", defaults.Port, "Port to listen on")
	f.StringVar(&opts.File, "file", defaults.File, "Media file to serve")
	f.StringVar(&opts.Index, "index", defaults.Index, "HTML page to serve on the index path (default: built-in player)")
	f.StringVar(&opts.ContentType, "content-type", defaults.ContentType, "Content-Type of the media file")
	f.Int64Var(&opts.MaxChunk, "max-chunk", defaults.MaxChunk, "Most bytes sent per response")
	f.IntVar(&opts.BufferSize, "buffer-size", defaults.BufferSize, "Size of the copy buffer")
	f.StringVar(&opts.WriteTimeout, "write-timeout", defaults.WriteTimeout, "Deadline for writing each buffer (0 disables)")
	f.StringVar(&opts.WatchPath, "watch-path", defaults.WatchPath, "Path serving the media")
	f.StringVar(&opts.IndexPath, "index-path", defaults.IndexPath, "Path serving the HTML page")
	f.StringVar(&opts.DB, "db", defaults.DB, "Journal DB file name (use 'memory' for in-memory db, empty to disable)")
	f.StringVar(&opts.logFilename, "log-file", "", "Log file to use (in addition to stdout)")
	f.BoolVar(&opts.verbosityTrace, "vv", false, "Verbosity: trace logging")
	return cmd
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		log.Fatal().Err(err).Msg("Exiting")
	}
}

func run(cmd *cobra.Command, opts *options) error {
	setupLogger(opts)

	config, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	writeTimeout, _ := config.writeTimeout()

	// fail early rather than on the first request
	media, err := rangestream.OpenFile(config.File)
	if err != nil {
		return fmt.Errorf("media file: %w", err)
	}
	log.Info().Str("file", config.File).Int64("size", media.Size()).Msg("Serving media")
	media.Close()

	streamer := rangestream.New(rangestream.Config{
		MediaPath:    config.File,
		ContentType:  config.ContentType,
		MaxChunkSize: config.MaxChunk,
		BufferSize:   config.BufferSize,
		WriteTimeout: writeTimeout,
		Logger:       &log.Logger,
	})

	page, err := rangestream.LoadStaticResponder(config.Index, config.WatchPath)
	if err != nil {
		return fmt.Errorf("index page: %w", err)
	}

	var j journal.Provider
	if config.DB != "" {
		sqliteJournal, err := journal.NewSQLiteJournal(config.DB)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		defer sqliteJournal.Close()
		j = sqliteJournal
	}

	routes := rangestream.Routes{Watch: config.WatchPath, Index: config.IndexPath}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           rangestream.NewRouter(routes, streamer, page, j, log.Logger),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("Visit http://127.0.0.1:%d%s", config.Port, config.IndexPath)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return err
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func setupLogger(opts *options) {
	// set log level
	logLevel := zerolog.DebugLevel
	if opts.verbosityTrace {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if opts.logFilename != "" {
		if logFileOutput, err := os.OpenFile(opts.logFilename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()
}
