package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/gitctx/internal/app"
	"github.com/maxbolgarin/gitctx/internal/config"
	"github.com/maxbolgarin/gitctx/internal/extractor"
	"github.com/maxbolgarin/gitctx/internal/gitexec"
	"github.com/maxbolgarin/gitctx/internal/scanner"
)

var (
	Version, Branch, Commit, BuildDate string
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()

	contextCmd       = kingpin.Command("context", "extract a snapshot of one repository").Default()
	contextRepo      = contextCmd.Flag("repo", "repository directory").Short('r').String()
	contextUntracked = contextCmd.Flag("untracked", "include untracked files").Bool()
	contextCommits   = contextCmd.Flag("commits", "number of recent commits to include").Int()
	contextLines     = contextCmd.Flag("context-lines", "diff context lines").Int()
	contextRaw       = contextCmd.Flag("raw", "disable AI safety sanitization").Bool()

	scanCmd     = kingpin.Command("scan", "scan a workspace for repositories")
	scanRoot    = scanCmd.Flag("root", "workspace root directory").Short('r').String()
	scanWorkers = scanCmd.Flag("workers", "concurrent repository extractions").Int()

	_ = kingpin.Command("serve", "serve the query API over HTTP")
)

func main() {
	command := kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx, command)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context, command string) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}
	logze.Init(logze.C().WithConsole().WithLevel(logLevel(cfg.LogLevel)))

	switch command {
	case "scan":
		return runScan(ctx, cfg)
	case "serve":
		return runServe(ctx, cfg)
	default:
		return runContext(ctx, cfg)
	}
}

func runContext(ctx contem.Context, cfg config.Config) error {
	if err := cfg.Extract.PrepareAndValidate(); err != nil {
		return erro.Wrap(err, "prepare extract config")
	}
	if *contextRepo != "" {
		cfg.Extract.Dir = *contextRepo
	}
	if *contextUntracked {
		cfg.Extract.Options.IncludeUntracked = true
	}
	if *contextCommits > 0 {
		cfg.Extract.Options.MaxCommits = *contextCommits
	}
	if *contextLines > 0 {
		cfg.Extract.Options.DiffContextLines = *contextLines
	}
	if *contextRaw {
		cfg.Extract.Options.SanitizeForAI = false
	}

	ext, err := extractor.New(cfg.Extract, gitexec.New(cfg.Extract.Dir))
	if err != nil {
		return erro.Wrap(err, "create extractor")
	}

	gc, err := ext.GetContext(ctx, cfg.Extract.Options)
	if err != nil {
		return erro.Wrap(err, "extract context")
	}

	return printJSON(gc)
}

func runScan(ctx contem.Context, cfg config.Config) error {
	if *scanRoot != "" {
		cfg.Scan.Root = *scanRoot
	}
	if *scanWorkers > 0 {
		cfg.Scan.Workers = *scanWorkers
	}

	s, err := scanner.New(cfg.Scan)
	if err != nil {
		return erro.Wrap(err, "create scanner")
	}
	defer s.Close()

	report, err := s.Scan(ctx)
	if err != nil {
		return erro.Wrap(err, "scan workspace")
	}

	return printJSON(report)
}

func runServe(ctx contem.Context, cfg config.Config) error {
	application, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "create app")
	}

	if err := application.StartServer(ctx); err != nil {
		return erro.Wrap(err, "start server")
	}

	<-ctx.Done()
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return erro.Wrap(err, "marshal output")
	}
	fmt.Println(string(data))
	return nil
}

func logLevel(s string) string {
	switch s {
	case "trace":
		return logze.LevelTrace
	case "debug":
		return logze.LevelDebug
	case "warn":
		return logze.LevelWarn
	case "error":
		return logze.LevelError
	default:
		return logze.LevelInfo
	}
}
