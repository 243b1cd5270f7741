package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/twenty-sol/internal/game2048"
	"github.com/vovakirdan/twenty-sol/internal/session"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new game",
	Long: `Start a new game owned by --wallet and print its ID.

Examples:
  twentysol new --wallet <addr>
  twentysol new --seed 42`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

var moveCmd = &cobra.Command{
	Use:   "move <id> <direction>...",
	Short: "Apply moves to a game",
	Long: `Apply one or more moves to a game owned by --wallet.

Directions: up, down, left, right (or w, s, a, d).
A move that does not change the board is ignored.

Examples:
  twentysol move <id> left
  twentysol move <id> w a s d`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMove,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a game",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var finishCmd = &cobra.Command{
	Use:   "finish <id>",
	Short: "Finish a game and collect its reward",
	Long: `Finish a game owned by --wallet. The final score goes on the leaderboard
and, if it reaches the reward threshold, tokens are minted to the wallet.
Finishing a game again only shows the recorded result.`,
	Args: cobra.ExactArgs(1),
	RunE: runFinish,
}

var flagGamesLimit int

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List your games",
	Args:  cobra.NoArgs,
	RunE:  runGames,
}

func init() {
	gamesCmd.Flags().IntVar(&flagGamesLimit, "limit", 20, "Maximum number of games to list")
}

func runNew(cmd *cobra.Command, _ []string) error {
	wallet, err := requireWallet()
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	game, err := a.svc.Start(cmd.Context(), wallet)
	if err != nil {
		return err
	}

	printGame(game)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	wallet, err := requireWallet()
	if err != nil {
		return err
	}

	id := args[0]
	dirs := make([]game2048.Direction, 0, len(args)-1)
	for _, arg := range args[1:] {
		dir, err := game2048.ParseDirection(arg)
		if err != nil {
			return err
		}
		dirs = append(dirs, dir)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var game session.Game
	for _, dir := range dirs {
		game, err = a.svc.Move(cmd.Context(), wallet, id, dir)
		if err != nil {
			return err
		}
		if game.State.Over() {
			break
		}
	}

	printGame(game)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	game, err := a.svc.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printGame(game)
	return nil
}

func runFinish(cmd *cobra.Command, args []string) error {
	wallet, err := requireWallet()
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Finish(cmd.Context(), wallet, args[0])
	if err != nil {
		return err
	}

	printGame(res.Game)
	printReward(res)
	return nil
}

func runGames(cmd *cobra.Command, _ []string) error {
	wallet, err := requireWallet()
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	games, err := a.svc.Games(cmd.Context(), wallet, flagGamesLimit)
	if err != nil {
		return err
	}

	if len(games) == 0 {
		fmt.Println("No games yet.")
		fmt.Println()
		fmt.Println("Run 'twentysol new' to start one.")
		return nil
	}

	fmt.Printf("  %-36s  %-10s  %-6s  %-11s  %s\n", "ID", "Score", "Moves", "Status", "Started")
	fmt.Printf("  %-36s  %-10s  %-6s  %-11s  %s\n", "--", "-----", "-----", "------", "-------")
	for _, g := range games {
		fmt.Printf("  %-36s  %-10d  %-6d  %-11s  %s\n",
			g.ID, g.Score, g.Moves, g.Status, g.StartedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func printGame(game session.Game) {
	st := game.State

	status := "in progress"
	switch {
	case game.Finished:
		status = "finished"
	case st.Over():
		status = "game over (run 'twentysol finish " + game.ID + "')"
	}

	fmt.Println(title("Game " + game.ID))
	fmt.Print(renderBoard(st.Board))
	fmt.Printf("Score: %d  Moves: %d  Best tile: %d\n", st.Score, st.Moves, st.MaxTile())
	fmt.Printf("Status: %s\n", status)
}

func printReward(res session.Result) {
	fmt.Println()
	if res.Reward == nil {
		fmt.Println("No reward for this score.")
		return
	}

	if res.Reward.Pending() {
		fmt.Printf("Reward pending: %d tokens (mint in progress)\n", res.Reward.Amount)
		return
	}

	verb := "Recorded reward"
	if res.Minted {
		verb = "Minted"
	}
	fmt.Printf("%s: %d tokens\n", verb, res.Reward.Amount)
	fmt.Printf("Transaction: %s\n", res.Reward.TxHash)
}
