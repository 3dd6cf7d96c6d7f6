package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchCommand re-renders a template file every time it changes,
// writing the result next to it. Handy while drafting a template.
func (a *app) watchCommand(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	paramsOut := paramFlags{}
	var (
		file       = flags.String("file", "", "Template file to watch (required)")
		output     = flags.String("output", "", "Output file (default: <file>.out)")
		paramsFile = flags.String("params", "", "YAML file with parameter values")
	)
	flags.Var(paramsOut, "param", "Parameter as name=value (repeatable)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("watch: --file is required")
	}
	dest := *output
	if dest == "" {
		dest = *file + ".out"
	}
	values, err := a.collectParams(nil, paramsOut, *paramsFile)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file, which
	// drops a watch set on the file itself.
	if err := watcher.Add(filepath.Dir(*file)); err != nil {
		return fmt.Errorf("watching %s: %w", *file, err)
	}

	renderOnce := func() {
		if err := a.renderFile(*file, dest, values); err != nil {
			fmt.Fprintf(a.stderr, "render failed: %v\n", err)
			return
		}
		fmt.Fprintf(a.stdout, "rendered %s -> %s\n", *file, dest)
	}

	renderOnce()
	fmt.Fprintf(a.stdout, "watching %s (Ctrl+C to stop)\n", *file)

	debounce := time.Duration(a.cfg.Watch.DebounceMs) * time.Millisecond
	var lastChange time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(*file) {
				continue
			}
			if time.Since(lastChange) < debounce {
				continue
			}
			lastChange = time.Now()
			renderOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(a.stderr, "watcher error: %v\n", err)
		}
	}
}

// renderFile renders one template file straight to disk.
func (a *app) renderFile(src, dest string, values map[string]any) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	out, err := a.engine.Render(string(data), values)
	if err != nil {
		return err
	}
	ext := filepath.Ext(src)
	if ext != "" {
		ext = ext[1:]
	}
	r, err := a.factory.For(ext)
	if err != nil {
		return err
	}
	return r.Render(out, dest)
}
