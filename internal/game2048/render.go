package game2048

import (
	"strconv"
	"strings"
)

const cellWidth = 7 // Width of each cell (including left border)

// TileStyler decorates a padded tile label. value is 0 for empty cells.
type TileStyler func(value int, label string) string

// Render draws the board as a box-drawing grid.
func Render(board Board) string {
	return RenderStyled(board, nil)
}

// RenderStyled draws the board, passing each cell label through style.
func RenderStyled(board Board, style TileStyler) string {
	var sb strings.Builder

	for y := range BoardSize + 1 {
		sb.WriteString(borderLine(y))
		sb.WriteRune('\n')
		if y == BoardSize {
			break
		}

		for x := range BoardSize {
			sb.WriteRune('│')
			label := cellLabel(board[y][x])
			if style != nil {
				label = style(board[y][x], label)
			}
			sb.WriteString(label)
		}
		sb.WriteString("│\n")
	}

	return sb.String()
}

// borderLine returns the horizontal border above row y.
func borderLine(y int) string {
	left, mid, right := '├', '┼', '┤'
	switch y {
	case 0:
		left, mid, right = '┌', '┬', '┐'
	case BoardSize:
		left, mid, right = '└', '┴', '┘'
	}

	var sb strings.Builder
	sb.WriteRune(left)
	for x := range BoardSize {
		if x > 0 {
			sb.WriteRune(mid)
		}
		sb.WriteString(strings.Repeat("─", cellWidth-1))
	}
	sb.WriteRune(right)
	return sb.String()
}

// cellLabel centers the tile value in a cell; empty cells are blank.
func cellLabel(val int) string {
	inner := cellWidth - 1
	if val == 0 {
		return strings.Repeat(" ", inner)
	}

	valStr := strconv.Itoa(val)
	padLeft := (inner - len(valStr)) / 2
	if padLeft < 0 {
		padLeft = 0
	}
	padRight := inner - len(valStr) - padLeft
	if padRight < 0 {
		padRight = 0
	}
	return strings.Repeat(" ", padLeft) + valStr + strings.Repeat(" ", padRight)
}
