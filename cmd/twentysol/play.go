package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/twenty-sol/internal/game2048"
	"github.com/vovakirdan/twenty-sol/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play interactively",
	Long: `Play a game by typing moves on stdin, one or more per line.

Controls:
  w / up      - Slide up
  a / left    - Slide left
  s / down    - Slide down
  d / right   - Slide right
  q / quit    - Stop playing

With --wallet the game is stored and finished when it ends, so it counts
for the leaderboard and rewards. Without a wallet it is played offline.

Examples:
  twentysol play
  twentysol play --wallet <addr>
  twentysol play --seed 42`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

// board is a game being played from the prompt.
type board interface {
	state() game2048.State
	move(ctx context.Context, dir game2048.Direction) (game2048.State, error)
}

type offlineBoard struct {
	eng *game2048.Engine
}

func (b *offlineBoard) state() game2048.State {
	return b.eng.State()
}

func (b *offlineBoard) move(_ context.Context, dir game2048.Direction) (game2048.State, error) {
	return b.eng.Move(dir)
}

type storedBoard struct {
	svc    *session.Service
	wallet string
	game   session.Game
}

func (b *storedBoard) state() game2048.State {
	return b.game.State
}

func (b *storedBoard) move(ctx context.Context, dir game2048.Direction) (game2048.State, error) {
	game, err := b.svc.Move(ctx, b.wallet, b.game.ID, dir)
	if err != nil {
		return b.game.State, err
	}
	b.game = game
	return game.State, nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if flagWallet == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var rng game2048.RandomSource
		if cfg.Game.Seed != 0 {
			rng = game2048.SeededSource(cfg.Game.Seed)
		}
		b := &offlineBoard{eng: game2048.New(rng)}
		playLoop(ctx, cmd.InOrStdin(), out, b)
		st := b.state()
		fmt.Fprintf(out, "Final score: %d (offline, not recorded)\n", st.Score)
		return nil
	}

	wallet, err := requireWallet()
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	game, err := a.svc.Start(ctx, wallet)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, title("Game "+game.ID))

	b := &storedBoard{svc: a.svc, wallet: wallet, game: game}
	if !playLoop(ctx, cmd.InOrStdin(), out, b) {
		fmt.Fprintf(out, "Game saved. Continue with 'twentysol move %s <dir>'.\n", game.ID)
		return nil
	}

	res, err := a.svc.Finish(ctx, wallet, game.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Final score: %d\n", res.Game.State.Score)
	printReward(res)
	return nil
}

// playLoop reads moves until the game is over, the player quits or input ends.
// It reports whether the game ended.
func playLoop(ctx context.Context, in io.Reader, out io.Writer, b board) bool {
	fmt.Fprint(out, renderBoard(b.state().Board))
	fmt.Fprintf(out, "Score: %d\n> ", b.state().Score)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		for _, tok := range strings.Fields(scanner.Text()) {
			switch strings.ToLower(tok) {
			case "q", "quit", "exit":
				return false
			}

			dir, err := game2048.ParseDirection(tok)
			if err != nil {
				fmt.Fprintf(out, "Unknown move %q (use w/a/s/d or q)\n", tok)
				continue
			}

			st, err := b.move(ctx, dir)
			if err != nil {
				fmt.Fprintf(out, "Move failed: %v\n", err)
				return false
			}
			if st.Over() {
				fmt.Fprint(out, renderBoard(st.Board))
				fmt.Fprintf(out, "Game over! Score: %d  Best tile: %d\n", st.Score, st.MaxTile())
				return true
			}
		}

		st := b.state()
		fmt.Fprint(out, renderBoard(st.Board))
		fmt.Fprintf(out, "Score: %d  Moves: %d\n> ", st.Score, st.Moves)
	}
	return false
}
