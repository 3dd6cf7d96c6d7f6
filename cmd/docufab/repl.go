package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

const replPrompt = ">> "

// replCommand runs an interactive expression evaluator against the
// configured function registry. Variables set with name=value persist
// for the session.
func (a *app) replCommand(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	words := completionWords(a)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, w := range words {
			if strings.HasPrefix(strings.ToLower(w), strings.ToLower(input)) {
				out = append(out, w)
			}
		}
		return out
	})

	historyFile := filepath.Join(os.TempDir(), ".docufab_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(a.stdout, "docufab %s expression evaluator\n", Version)
	fmt.Fprintln(a.stdout, "Type an expression, name=value to set a variable, or 'exit' to quit")
	fmt.Fprintln(a.stdout, "")

	vars := map[string]any{}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		input, err := line.Prompt(replPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(a.stdout, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(a.stdout, "")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}
		line.AppendHistory(input)

		if name, value, ok := splitAssignment(trimmed); ok {
			vars[name] = value
			continue
		}

		result, err := a.engine.EvalExpression(trimmed, vars)
		if err != nil {
			fmt.Fprintf(a.stdout, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(a.stdout, result)
	}
}

// splitAssignment recognizes simple name=value lines. Comparison
// operators are left to the expression parser.
func splitAssignment(input string) (name string, value any, ok bool) {
	eq := strings.IndexByte(input, '=')
	if eq <= 0 || eq == len(input)-1 {
		return "", nil, false
	}
	if input[eq+1] == '=' || input[eq-1] == '!' || input[eq-1] == '<' || input[eq-1] == '>' {
		return "", nil, false
	}
	name = strings.TrimSpace(input[:eq])
	for _, r := range name {
		if !isIdentRune(r) {
			return "", nil, false
		}
	}
	return name, scalarValue(strings.TrimSpace(input[eq+1:])), true
}

// scalarValue types an assigned value so x=5 stays usable in
// arithmetic. Quoted text is unwrapped; everything else is a string.
func scalarValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// completionWords lists every registered function plus the keywords.
func completionWords(a *app) []string {
	words := []string{"true", "false", "in"}
	words = append(words, a.engine.Registry().Names()...)
	return words
}
