package game2048

import (
	"encoding/json"
	"fmt"
)

// Record is the engine-agnostic form of a game state, used for persistence.
// Pointer fields distinguish absent values from zero.
type Record struct {
	Board  [][]int `json:"board"`
	Score  *int    `json:"score"`
	Moves  *int    `json:"moves"`
	Status string  `json:"status"`
}

// RecordOf converts a snapshot into a Record.
func RecordOf(s State) Record {
	rows := make([][]int, BoardSize)
	for y := range BoardSize {
		rows[y] = append([]int(nil), s.Board[y][:]...)
	}
	score, moves := s.Score, s.Moves
	return Record{
		Board:  rows,
		Score:  &score,
		Moves:  &moves,
		Status: string(s.Status),
	}
}

// Record exports the engine's full state.
func (e *Engine) Record() Record {
	return RecordOf(e.State())
}

// MarshalJSON encodes the engine as its Record.
func (e *Engine) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Record())
}

// UnmarshalRecord decodes and validates a JSON record.
func UnmarshalRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if _, err := rec.State(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// DecodeState decodes a JSON record straight into a validated snapshot.
func DecodeState(data []byte) (State, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return rec.State()
}

// State validates the record and converts it into a snapshot.
func (r Record) State() (State, error) {
	var s State

	if len(r.Board) != BoardSize {
		return s, fmt.Errorf("%w: board has %d rows, want %d", ErrMalformedState, len(r.Board), BoardSize)
	}
	for y, row := range r.Board {
		if len(row) != BoardSize {
			return s, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedState, y, len(row), BoardSize)
		}
		for x, v := range row {
			switch {
			case v == 0:
			case v < 0:
				return s, fmt.Errorf("%w: negative tile %d at (%d,%d)", ErrMalformedState, v, x, y)
			case v > MaxTile:
				return s, fmt.Errorf("%w: tile %d at (%d,%d) exceeds %d", ErrMalformedState, v, x, y, MaxTile)
			case !isPowerOfTwo(v):
				return s, fmt.Errorf("%w: tile %d at (%d,%d) is not a power of two", ErrMalformedState, v, x, y)
			}
			s.Board[y][x] = v
		}
	}

	if r.Score == nil || *r.Score < 0 {
		return s, fmt.Errorf("%w: score missing or negative", ErrMalformedState)
	}
	if r.Moves == nil || *r.Moves < 0 {
		return s, fmt.Errorf("%w: moves missing or negative", ErrMalformedState)
	}
	s.Score = *r.Score
	s.Moves = *r.Moves

	switch Status(r.Status) {
	case StatusInProgress, StatusGameOver:
		s.Status = Status(r.Status)
	default:
		return s, fmt.Errorf("%w: unknown status %q", ErrMalformedState, r.Status)
	}

	return s, nil
}

// FromRecord validates a record and rebuilds an engine from it.
func FromRecord(rec Record, rng RandomSource) (*Engine, error) {
	s, err := rec.State()
	if err != nil {
		return nil, err
	}
	return Restore(s, rng), nil
}

// Restore rebuilds an engine from a snapshot that is already validated.
// A nil rng falls back to the global math/rand source.
// A locked board recorded as in progress is restored as game over.
func Restore(s State, rng RandomSource) *Engine {
	e := newEngine(rng)
	e.board = s.Board
	e.score = s.Score
	e.moves = s.Moves
	e.status = s.Status
	if e.status == StatusInProgress && IsGameOver(e.board) {
		e.status = StatusGameOver
	}
	return e
}
