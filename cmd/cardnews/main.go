// Package main provides the card-news command line.
// Usage: cardnews <generate|story|history> [flags]
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 1
	}

	var err error
	switch args[0] {
	case "generate":
		err = runGenerate(args[1:], stdout, stderr)
	case "story":
		err = runStory(args[1:], stdout, stderr)
	case "history":
		err = runHistory(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		usage(stderr)
		return 1
	}

	if err != nil {
		if !errors.Is(err, errReported) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errReported marks an error whose message was already printed.
var errReported = errors.New("reported")

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage: cardnews <command> [flags]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Commands:")
	_, _ = fmt.Fprintln(w, "  generate   Fetch feeds and generate card news")
	_, _ = fmt.Fprintln(w, "  story      Build one story from a title and summary and print it as JSON")
	_, _ = fmt.Fprintln(w, "  history    Show the number of published articles")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Examples:")
	_, _ = fmt.Fprintln(w, "  cardnews generate --feeds https://example.com/rss --limit 3")
	_, _ = fmt.Fprintln(w, "  cardnews generate --dry-run")
	_, _ = fmt.Fprintln(w, `  cardnews story --title "Seoul subway fares rise" --summary "..."`)
}

// loadEnv loads path, or ./.env when path is empty and the file exists.
// Variables already set in the environment win.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return nil
}
