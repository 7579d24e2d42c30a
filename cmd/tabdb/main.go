package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/tuannm99/tabdb/sqlclient"
)

const (
	prompt     = "tabdb> "
	contPrompt = "...> "
)

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".tabdb_history"
	}
	return filepath.Join(home, ".tabdb_history")
}

func main() {
	var (
		addr       = pflag.String("addr", "127.0.0.1:8866", "server address")
		timeout    = pflag.Duration("timeout", 3*time.Second, "dial timeout")
		rwTimeout  = pflag.Duration("rw-timeout", 30*time.Second, "per-command timeout (0 = none)")
		histPath   = pflag.String("history", defaultHistoryPath(), "history file path")
		histMax    = pflag.Int("history-max", 2000, "max history lines loaded into memory")
		raw        = pflag.Bool("raw", false, "print responses exactly as received")
		oneShotSQL = pflag.StringP("command", "c", "", "execute one command and exit (must end with ';')")
	)
	pflag.Parse()

	cli, err := sqlclient.Dial(*addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = cli.Close() }()
	cli.SetRWTimeout(*rwTimeout)

	if strings.TrimSpace(*oneShotSQL) != "" {
		resp, err := cli.Exec(*oneShotSQL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		printResponse(os.Stdout, resp, *raw)
		if sqlclient.IsError(resp) {
			os.Exit(2)
		}
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Printf("connected to %s\n", *addr)
	fmt.Println(`type \help for help`)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C clears current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
			}
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(os.Stderr, "readline: %v\n", err)
			}
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if buf.Len() == 0 && isMetaCommand(line) {
			if quit := runMeta(line, h, raw); quit {
				return
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt(contPrompt)
			continue
		}

		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = h.Append(stmt)
		_ = rl.SaveHistory(compactOneLine(stmt))

		resp, err := cli.Exec(stmt)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printResponse(os.Stdout, resp, *raw)
	}
}

func isMetaCommand(line string) bool {
	return strings.HasPrefix(line, `\`) || line == "quit" || line == "exit"
}

func runMeta(line string, h *History, raw *bool) (quit bool) {
	switch line {
	case `\q`, "quit", "exit":
		return true
	case `\help`:
		fmt.Println(`meta commands:
  \q | quit | exit       quit
  \history               print history
  \raw                   toggle raw response output
  \help                  show help

commands end with ';' and may span several lines`)
	case `\history`:
		h.Print(os.Stdout, 50)
	case `\raw`:
		*raw = !*raw
		fmt.Printf("raw output: %v\n", *raw)
	default:
		fmt.Printf("unknown command: %s\n", line)
	}
	return false
}
