// docufab is a document fabricator: it keeps programmable templates in
// a local database, resolves template inheritance, and renders business
// documents and whole project trees from them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/docufab/docufab/config"
	"github.com/docufab/docufab/pkg/engine"
	"github.com/docufab/docufab/pkg/engine/evaluator"
	"github.com/docufab/docufab/render"
	"github.com/docufab/docufab/store"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the shared pieces every subcommand needs.
type app struct {
	cfg     *config.Config
	store   *store.Store
	engine  *engine.Engine
	factory *render.Factory
	stdout  io.Writer
	stderr  io.Writer
	actor   string
}

// run is the entry point, designed for testability.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("docufab", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath  = flags.String("config", "", "Path to config file")
		dbPath      = flags.String("db", "", "Override database path")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.Usage = func() { printUsage(stderr) }

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *showHelp {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		fmt.Fprintf(stdout, "docufab version %s\n", Version)
		return nil
	}

	rest := flags.Args()
	if len(rest) == 0 {
		printUsage(stdout)
		return nil
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.SeedBaseTemplates(); err != nil {
		return fmt.Errorf("seeding base templates: %w", err)
	}

	a := &app{
		cfg:   cfg,
		store: st,
		engine: engine.New(evaluator.Options{
			Locale:   cfg.Locale,
			Currency: cfg.Currency,
			User: map[string]string{
				"name":  cfg.User.Name,
				"email": cfg.User.Email,
			},
		}),
		factory: render.NewFactory(),
		stdout:  stdout,
		stderr:  stderr,
		actor:   cfg.User.Name,
	}

	switch rest[0] {
	case "template":
		return a.templateCommand(ctx, rest[1:])
	case "project":
		return a.projectCommand(ctx, rest[1:])
	case "repl":
		return a.replCommand(ctx)
	case "watch":
		return a.watchCommand(ctx, rest[1:])
	case "help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try \"docufab help\")", rest[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `docufab - programmable business document templates

Usage:
  docufab [options] <command> [args...]

Commands:
  template create    Create a template
  template modify    Modify a template
  template inherit   Create a template that extends another
  template render    Render a template to a file or stdout
  template list      List templates
  template delete    Delete a template
  template history   Show a template's change history
  project create     Create a project with a folder structure
  project list       List projects
  project generate   Materialize a project's folders on disk
  project export     Export a project structure to JSON
  project import     Import a project structure from JSON
  project scan       Scan a directory into a project structure
  repl               Interactive expression evaluator
  watch              Re-render a template file on change

Options:
  -config <path>     Path to config file
  -db <path>         Override database path
  -version           Show version
  -help              Show this help
`)
}
