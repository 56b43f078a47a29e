package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tomz197/containment/internal/config"
	"github.com/tomz197/containment/internal/loop"
	"golang.org/x/term"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the game, so logs only go to a file when asked.
	var logOut io.Writer = io.Discard
	if path := config.GetEnv("LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := config.NewLogger(logOut, config.GetEnv("LOG_LEVEL", "info"), "game")

	// `game tuning` prints the effective rules as a starting TUNING_FILE.
	if len(os.Args) > 1 && os.Args[1] == "tuning" {
		cfg, err := config.LoadTuning(config.GetEnv("TUNING_FILE", ""))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load tuning: %v\n", err)
			os.Exit(1)
		}
		data, err := config.MarshalTuning(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to render tuning: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	cfg, updates, stopWatch, err := config.LoadAndWatch(config.GetEnv("TUNING_FILE", ""), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load tuning: %v\n", err)
		os.Exit(1)
	}
	defer stopWatch()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	err = loop.Run(reader, os.Stdout, loop.Options{
		Config:     cfg,
		Logger:     logger,
		Username:   config.GetEnv("USER", ""),
		RewardCode: config.GetEnv("REWARD_CODE", ""),
		RewardURL:  config.GetEnv("REWARD_URL", ""),
		Tuning:     updates,
	})
	if err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
