package server

import (
	"sort"
	"time"
)

// Result is one finished run on the results board.
type Result struct {
	Username string
	Won      bool
	Level    int
	Lives    int
	Duration time.Duration
}

// better orders results: wins first, then higher level, more lives, faster run.
func better(a, b Result) bool {
	if a.Won != b.Won {
		return a.Won
	}
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	if a.Lives != b.Lives {
		return a.Lives > b.Lives
	}
	return a.Duration < b.Duration
}

// insertResult adds r and keeps the best limit entries.
func insertResult(board []Result, r Result, limit int) []Result {
	board = append(board, r)
	sort.SliceStable(board, func(i, j int) bool {
		return better(board[i], board[j])
	})
	if len(board) > limit {
		board = board[:limit]
	}
	return board
}
