// Command glint renders an AI coding assistant's streamed output as a live
// chat transcript in the terminal.
//
// Usage:
//
//	glint [flags] [-- command args...]
//
// Flags:
//
//	-config string   Path to config file (default: ~/.glint/config.toml)
//	-log string      Debug log file (overrides config; empty disables)
//	-history string  Prompt history file (default: ~/.glint/history.jsonl)
//
// The command after -- replaces the configured upstream command line. It
// must emit newline-delimited JSON events on stdout and accept user turns
// on stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/glintcli/glint"
	bt "github.com/glintcli/glint/bubbletea"
	"github.com/glintcli/glint/config"
	"github.com/glintcli/glint/history"
	"github.com/glintcli/glint/logger"
	"github.com/glintcli/glint/protocol"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "glint: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "Path to config file")
		logPath     = flag.String("log", "", "Debug log file (overrides config)")
		historyPath = flag.String("history", "", "Prompt history file")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	command := cfg.Command
	if args := flag.Args(); len(args) > 0 {
		command = args
	}

	logFile := cfg.LogFile
	if *logPath != "" {
		logFile = *logPath
	}
	log, logCloser, err := logger.New(logFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	store, err := openHistory(*historyPath, cfg.HistoryFile)
	if err != nil {
		log.WithError(err).Warn("prompt history unavailable")
	}

	// The upstream process dies with its context. Ctrl+C in the TUI
	// cancels procCtx first; the signal context covers everything else.
	procCtx, procCancel := context.WithCancel(ctx)
	defer procCancel()

	proc := exec.CommandContext(procCtx, command[0], command[1:]...)
	stdin, err := proc.StdinPipe()
	if err != nil {
		return fmt.Errorf("upstream stdin: %w", err)
	}
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return fmt.Errorf("upstream stdout: %w", err)
	}
	proc.Stderr = io.Discard
	if err := proc.Start(); err != nil {
		return fmt.Errorf("start %s: %w", command[0], err)
	}
	log.WithField("command", command).Info("upstream started")

	events, errs := bt.ReadEvents(protocol.NewScanner(stdout), log)

	conv := glint.NewConversation()
	model := bt.New(conv, cfg.BuildTheme(), stdin, events, errs, store, log, procCancel)

	runErr := bt.Run(ctx, model)

	stdin.Close()
	procCancel()
	if err := proc.Wait(); err != nil {
		// Expected when we killed it.
		log.WithError(err).Debug("upstream exited")
	}

	if runErr != nil {
		return fmt.Errorf("TUI: %w", runErr)
	}
	return nil
}

func openHistory(flagPath, cfgPath string) (*history.Store, error) {
	switch {
	case flagPath != "":
		return history.New(flagPath), nil
	case cfgPath != "":
		return history.New(cfgPath), nil
	default:
		return history.NewDefault()
	}
}
