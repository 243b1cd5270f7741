package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vovakirdan/twenty-sol/internal/game2048"
)

// tileStyles maps tile values to colours. Larger tiles use the last style.
var tileStyles = map[int]lipgloss.Style{
	0:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	2:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	4:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	8:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	16:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	32:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	64:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	128:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	256:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	512:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
	1024: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	2048: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
}

var bigTileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)

var titleStyle = lipgloss.NewStyle().Bold(true)

func styleTile(value int, label string) string {
	st, ok := tileStyles[value]
	if !ok {
		st = bigTileStyle
	}
	return st.Render(label)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// renderBoard draws the board, coloured when stdout is a terminal.
func renderBoard(board game2048.Board) string {
	if !isTerminal() {
		return game2048.Render(board)
	}
	return game2048.RenderStyled(board, styleTile)
}

func title(s string) string {
	if !isTerminal() {
		return s
	}
	return titleStyle.Render(s)
}
