package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/artpar/workermeta/internal/core/converter"
	"github.com/artpar/workermeta/internal/core/history"
	"github.com/artpar/workermeta/internal/core/wrangler"
	"github.com/artpar/workermeta/internal/shell/loader"
	"github.com/artpar/workermeta/internal/shell/output"
	"github.com/artpar/workermeta/internal/shell/prompt"
	"github.com/artpar/workermeta/internal/shell/store"
)

// ConvertOptions configures one run of the conversion pipeline.
type ConvertOptions struct {
	Dir          string
	WranglerPath string
	OutPath      string
	Format       output.Format

	// Tag is used as the previous migration tag when TagSet is true.
	Tag    string
	TagSet bool

	Prompt bool
	Strict bool

	History    bool
	HistoryDSN string
}

// =============================================================================
// Pipeline
// =============================================================================

// Pipeline runs a conversion from a project directory: find the config,
// parse it, load env overrides, settle the previous migration tag, convert,
// write the result and report.
type Pipeline struct {
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

// NewPipeline creates a pipeline reporting progress to stdout.
func NewPipeline(logger *slog.Logger, stdin io.Reader, stdout io.Writer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
	}
}

// Run executes the pipeline. Errors are *CommandError.
func (p *Pipeline) Run(ctx context.Context, opts ConvertOptions) (*converter.Result, error) {
	p.say("Looking for Wrangler config...")

	configPath := opts.WranglerPath
	if configPath == "" {
		found, err := loader.FindConfig(opts.Dir)
		if err != nil {
			return nil, &CommandError{Op: "FindConfig", Err: err, ExitCode: ExitLoadError}
		}
		configPath = found
	}
	p.say("Found config: %s", filepath.Base(configPath))

	cfg, err := loader.ParseConfig(configPath)
	if err != nil {
		return nil, &CommandError{Op: "ParseConfig", Err: err, ExitCode: ExitLoadError}
	}
	p.say("Config parsed successfully")

	p.say("Looking for environment files...")
	env, err := loader.LoadEnv(opts.Dir)
	if err != nil {
		return nil, &CommandError{Op: "LoadEnv", Err: err, ExitCode: ExitLoadError}
	}
	if len(env) > 0 {
		p.say("Found %d environment variables", len(env))
	} else {
		p.say("No environment files found or empty")
	}

	var hist store.Store
	if opts.History {
		s, err := store.NewSQLiteStore(opts.HistoryDSN)
		if err != nil {
			return nil, &CommandError{Op: "OpenHistory", Err: err, ExitCode: ExitStoreError}
		}
		defer s.Close()
		hist = s
	}

	previousTag, err := p.previousTag(ctx, opts, cfg, hist)
	if err != nil {
		return nil, err
	}

	p.say("Converting config...")
	var result *converter.Result
	if opts.Strict {
		result, err = converter.ConvertStrict(cfg, env, previousTag)
		if err != nil {
			return nil, &CommandError{Op: "Convert", Err: err, ExitCode: ExitConvertError}
		}
	} else {
		result = converter.Convert(cfg, env, previousTag)
	}

	if err := output.Write(opts.OutPath, result, opts.Format); err != nil {
		return nil, &CommandError{Op: "WriteOutput", Err: err, ExitCode: ExitOutputError}
	}

	if hist != nil {
		p.record(ctx, hist, result, previousTag)
	}

	outPath, err := filepath.Abs(opts.OutPath)
	if err != nil {
		outPath = opts.OutPath
	}
	p.say("Conversion complete! Output written to %s", outPath)
	p.say("Generated %d routes for worker %q", result.RouteCount(), result.ScriptName)
	if result.BindingCount() > 0 {
		p.say("Generated %d bindings", result.BindingCount())
	}
	if result.IsModuleWorker() {
		p.say("Entry module: %s", result.MainModule)
	}

	return result, nil
}

// previousTag settles the migration tag the deployed worker is at: the
// explicit tag, else the answer to the prompt, else the last recorded tag.
func (p *Pipeline) previousTag(ctx context.Context, opts ConvertOptions, cfg *wrangler.Config, hist store.Store) (string, error) {
	if opts.TagSet {
		return opts.Tag, nil
	}

	recorded := ""
	if hist != nil {
		script := converter.ScriptName(cfg)
		tag, err := hist.LatestMigrationTag(ctx, script)
		switch {
		case err == nil:
			recorded = tag
			p.logger.Debug("using recorded migration tag", "script", script, "tag", tag)
		case !errors.Is(err, store.ErrNotFound):
			return "", &CommandError{Op: "LatestMigrationTag", Err: err, ExitCode: ExitStoreError}
		}
	}

	if !opts.Prompt {
		return recorded, nil
	}

	tag, err := prompt.New(p.stdin, p.stdout).MigrationTag(ctx, recorded)
	if err != nil {
		return "", &CommandError{Op: "PromptMigrationTag", Err: err, ExitCode: ExitLoadError}
	}
	return tag, nil
}

// record saves the conversion. The output file is already written, so a
// failure is only logged.
func (p *Pipeline) record(ctx context.Context, hist store.Store, result *converter.Result, previousTag string) {
	conv, err := history.NewConversion(result, previousTag)
	if err == nil {
		err = hist.RecordConversion(ctx, conv)
	}
	if err != nil {
		p.logger.Warn("failed to record conversion", "script", result.ScriptName, "error", err)
		return
	}
	p.logger.Debug("conversion recorded", "id", conv.ID, "script", conv.ScriptName)
	if conv.AdvancesTag() {
		p.logger.Info("migration tag advanced", "script", conv.ScriptName, "from", conv.OldTag, "to", conv.NewTag)
	}
}

func (p *Pipeline) say(format string, args ...any) {
	fmt.Fprintf(p.stdout, format+"\n", args...)
}
