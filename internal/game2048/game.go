// Package game2048 implements the 2048 grid engine: a 4x4 tile-merging
// puzzle with injectable randomness for tile spawning.
package game2048

import (
	"errors"
	"fmt"
	"math/rand"
)

// Errors returned by the engine.
var (
	ErrInvalidDirection = errors.New("game2048: invalid direction")
	ErrMalformedState   = errors.New("game2048: malformed state")
)

// Status is the lifecycle status of a game.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusGameOver   Status = "GAME_OVER"
)

// spawn2Prob is the probability that a spawned tile is a 2 (otherwise 4).
const spawn2Prob = 0.9

// RandomSource returns uniform draws in [0, 1).
type RandomSource func() float64

// SeededSource returns a reproducible RandomSource for the given seed.
func SeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed)).Float64
}

// State is an immutable snapshot of a game.
// Board is an array, so every State is an independent copy.
type State struct {
	Board  Board
	Score  int
	Moves  int
	Status Status
}

// Over reports whether the game has ended.
func (s State) Over() bool {
	return s.Status == StatusGameOver
}

// MaxTile returns the highest tile on the snapshot board.
func (s State) MaxTile() int {
	return MaxTileOn(s.Board)
}

// Engine simulates one 2048 game.
// It is not safe for concurrent use; callers serialize moves.
type Engine struct {
	rng    RandomSource
	board  Board
	score  int
	moves  int
	status Status
}

// New creates a game with two tiles spawned on an empty board.
// A nil rng falls back to the global math/rand source.
func New(rng RandomSource) *Engine {
	e := newEngine(rng)
	e.spawnTile()
	e.spawnTile()
	return e
}

func newEngine(rng RandomSource) *Engine {
	if rng == nil {
		rng = rand.Float64
	}
	return &Engine{
		rng:    rng,
		status: StatusInProgress,
	}
}

// State returns the current snapshot.
func (e *Engine) State() State {
	return State{
		Board:  e.board,
		Score:  e.score,
		Moves:  e.moves,
		Status: e.status,
	}
}

// Move slides the board in dir.
// A move that leaves the board unchanged, or any move on a finished game,
// is a no-op and returns the current state.
func (e *Engine) Move(dir Direction) (State, error) {
	if !dir.Valid() {
		return e.State(), fmt.Errorf("%w: %q", ErrInvalidDirection, string(dir))
	}

	if e.status == StatusGameOver {
		return e.State(), nil
	}

	newBoard, gained, changed := Slide(e.board, dir)
	if !changed {
		return e.State(), nil
	}

	e.board = newBoard
	e.score += gained
	e.moves++

	e.spawnTile()

	if IsGameOver(e.board) {
		e.status = StatusGameOver
	}

	return e.State(), nil
}

// spawnTile places a 2 (90%) or 4 (10%) on a random empty cell.
// The first draw picks the cell, the second the value.
func (e *Engine) spawnTile() {
	emptyCells := EmptyCells(e.board)
	if len(emptyCells) == 0 {
		return
	}

	idx := int(e.rng() * float64(len(emptyCells)))
	if idx >= len(emptyCells) {
		idx = len(emptyCells) - 1
	}
	if idx < 0 {
		idx = 0
	}
	cell := emptyCells[idx]

	value := 2
	if e.rng() >= spawn2Prob {
		value = 4
	}

	e.board[cell.Y][cell.X] = value
}
