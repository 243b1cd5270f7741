package game2048

import (
	"fmt"
	"strings"
)

// Direction represents a move direction.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions lists every valid direction in a stable order.
var Directions = []Direction{DirUp, DirDown, DirLeft, DirRight}

// Valid reports whether d is one of the four recognized directions.
func (d Direction) Valid() bool {
	switch d {
	case DirUp, DirDown, DirLeft, DirRight:
		return true
	}
	return false
}

// ParseDirection converts user input into a Direction.
// Accepts full names and the w/a/s/d keys, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w":
		return DirUp, nil
	case "down", "s":
		return DirDown, nil
	case "left", "a":
		return DirLeft, nil
	case "right", "d":
		return DirRight, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// BoardSize is the board dimension.
const BoardSize = 4

// MaxTile is the largest tile a 4x4 board can ever hold (2^17).
// Larger values are rejected when restoring a record.
const MaxTile = 1 << 17

// Board represents a 4x4 game board. Row-major: board[y][x].
type Board [BoardSize][BoardSize]int

// Cell is a board coordinate.
type Cell struct{ X, Y int }

// slideRow slides and merges a single row to the left.
// Each tile takes part in at most one merge.
// Returns the updated row and the score gained from merges.
func slideRow(row [BoardSize]int) (result [BoardSize]int, score int) {
	writePos := 0
	mergeable := false // result[writePos-1] has not merged yet

	for i := range BoardSize {
		if row[i] == 0 {
			continue
		}

		if mergeable && result[writePos-1] == row[i] {
			result[writePos-1] *= 2
			score += result[writePos-1]
			mergeable = false
		} else {
			result[writePos] = row[i]
			writePos++
			mergeable = true
		}
	}

	return result, score
}

// reverseRow mirrors a row.
func reverseRow(row [BoardSize]int) [BoardSize]int {
	var result [BoardSize]int
	for i := range BoardSize {
		result[i] = row[BoardSize-1-i]
	}
	return result
}

// mirror reverses every row of the board.
func mirror(board Board) Board {
	var result Board
	for y := range BoardSize {
		result[y] = reverseRow(board[y])
	}
	return result
}

// transpose returns the matrix transpose.
func transpose(board Board) Board {
	var result Board
	for y := range BoardSize {
		for x := range BoardSize {
			result[y][x] = board[x][y]
		}
	}
	return result
}

// SlideLeft slides all tiles left and merges.
// Returns the new board, score gained, and whether the board changed.
func SlideLeft(board Board) (Board, int, bool) {
	var newBoard Board
	totalScore := 0

	for y := range BoardSize {
		newRow, score := slideRow(board[y])
		newBoard[y] = newRow
		totalScore += score
	}

	return newBoard, totalScore, newBoard != board
}

// SlideRight slides all tiles right and merges.
func SlideRight(board Board) (Board, int, bool) {
	slid, score, _ := SlideLeft(mirror(board))
	newBoard := mirror(slid)
	return newBoard, score, newBoard != board
}

// SlideUp slides all tiles up and merges.
func SlideUp(board Board) (Board, int, bool) {
	slid, score, _ := SlideLeft(transpose(board))
	newBoard := transpose(slid)
	return newBoard, score, newBoard != board
}

// SlideDown slides all tiles down and merges.
func SlideDown(board Board) (Board, int, bool) {
	slid, score, _ := SlideLeft(mirror(transpose(board)))
	newBoard := transpose(mirror(slid))
	return newBoard, score, newBoard != board
}

// Slide performs a move in the given direction.
// Returns the new board, score gained, and whether the board changed.
// An unknown direction leaves the board untouched.
func Slide(board Board, dir Direction) (Board, int, bool) {
	switch dir {
	case DirLeft:
		return SlideLeft(board)
	case DirRight:
		return SlideRight(board)
	case DirUp:
		return SlideUp(board)
	case DirDown:
		return SlideDown(board)
	default:
		return board, 0, false
	}
}

// EmptyCells returns coordinates of all empty cells in row-major order.
func EmptyCells(board Board) []Cell {
	var cells []Cell
	for y := range BoardSize {
		for x := range BoardSize {
			if board[y][x] == 0 {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// HasEmptyCell returns true if there's at least one empty cell.
func HasEmptyCell(board Board) bool {
	for y := range BoardSize {
		for x := range BoardSize {
			if board[y][x] == 0 {
				return true
			}
		}
	}
	return false
}

// HasPossibleMerge returns true if any orthogonally adjacent tiles can merge.
func HasPossibleMerge(board Board) bool {
	for y := range BoardSize {
		for x := range BoardSize {
			val := board[y][x]
			if val == 0 {
				continue
			}
			if x < BoardSize-1 && board[y][x+1] == val {
				return true
			}
			if y < BoardSize-1 && board[y+1][x] == val {
				return true
			}
		}
	}
	return false
}

// CanMove returns true if any move is possible.
func CanMove(board Board) bool {
	return HasEmptyCell(board) || HasPossibleMerge(board)
}

// IsGameOver returns true if no moves are possible.
func IsGameOver(board Board) bool {
	return !CanMove(board)
}

// MaxTileOn returns the highest tile value on the board.
func MaxTileOn(board Board) int {
	maxVal := 0
	for y := range BoardSize {
		for x := range BoardSize {
			if board[y][x] > maxVal {
				maxVal = board[y][x]
			}
		}
	}
	return maxVal
}

// isPowerOfTwo reports whether v is a positive power of two.
func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
