package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/artpar/workermeta/internal/shell/output"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitLoadError       = 2
	ExitConvertError    = 3
	ExitOutputError     = 4
	ExitStoreError      = 5
	ExitHTTPServerError = 6
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "serve" {
		return runServe(args[1:], stdout, stderr)
	}
	return runConvert(args, stdin, stdout, stderr)
}

// =============================================================================
// Convert Command
// =============================================================================

func runConvert(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("workermeta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to workermeta settings file")
	dir := fs.String("dir", ".", "Project directory holding the wrangler config and env files")
	wranglerPath := fs.String("wrangler", "", "Path to the wrangler config (skips discovery)")
	outPath := fs.String("out", "", "Output file (default metadata.<format> in the project directory)")
	format := fs.String("format", "", "Output format: json or yaml")
	tag := fs.String("tag", "", "Migration tag last applied to the deployed worker (skips the prompt)")
	noPrompt := fs.Bool("no-prompt", false, "Do not ask for the migration tag")
	strict := fs.Bool("strict", false, "Reject configs that fail validation")
	useHistory := fs.Bool("history", false, "Record the conversion and default the migration tag from history")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitConfigError
	}

	// Handle version flag
	if *showVersion {
		fmt.Fprintf(stdout, "workermeta %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	// Flags given on the command line win over the settings file
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["out"] {
		cfg.Output.Path = *outPath
	}
	if set["format"] {
		cfg.Output.Format = *format
	}
	if set["strict"] {
		cfg.Convert.Strict = *strict
	}
	if set["history"] {
		cfg.History.Enabled = *useHistory
	}
	if *noPrompt {
		cfg.Convert.Prompt = false
	}

	outFormat, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := SetupLogger(cfg, stderr)

	opts := ConvertOptions{
		Dir:          *dir,
		WranglerPath: *wranglerPath,
		OutPath:      cfg.Output.Path,
		Format:       outFormat,
		Tag:          *tag,
		TagSet:       set["tag"],
		Prompt:       cfg.Convert.Prompt,
		Strict:       cfg.Convert.Strict,
		History:      cfg.History.Enabled,
		HistoryDSN:   cfg.History.DSN,
	}
	if opts.OutPath == "" {
		opts.OutPath = filepath.Join(opts.Dir, output.DefaultFileName(outFormat))
	}

	pipeline := NewPipeline(logger, stdin, stdout)
	if _, err := pipeline.Run(context.Background(), opts); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if cErr, ok := err.(*CommandError); ok {
			return cErr.ExitCode
		}
		return ExitConvertError
	}

	return ExitSuccess
}

// =============================================================================
// Serve Command
// =============================================================================

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("workermeta serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to workermeta settings file")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitConfigError
	}

	// Load configuration
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	// Setup logger
	logger := SetupLogger(cfg, stderr)
	logger.Info("starting workermeta",
		"version", Version,
		"config", *configPath,
	)

	// Create server
	server, err := NewServer(cfg, logger)
	if err != nil {
		if cErr, ok := err.(*CommandError); ok {
			logger.Error("failed to create server",
				"error", cErr.Err,
				"operation", cErr.Op,
			)
			return cErr.ExitCode
		}
		logger.Error("failed to create server", "error", err)
		return ExitConfigError
	}

	// Start server
	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		if cErr, ok := err.(*CommandError); ok {
			logger.Error("server error",
				"error", cErr.Err,
				"operation", cErr.Op,
			)
			return cErr.ExitCode
		}
		logger.Error("server error", "error", err)
		return ExitHTTPServerError
	}

	return ExitSuccess
}

// =============================================================================
// Command Error
// =============================================================================

// CommandError represents a failed step with the exit code it maps to.
type CommandError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *CommandError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
