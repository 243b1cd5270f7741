package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagTake   int
	flagCursor string
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the best finished scores",
	Long: `Display finished scores, best first. Long leaderboards are paged: pass the
printed cursor to --cursor to see the next page.

Examples:
  twentysol leaderboard
  twentysol leaderboard --take 5 --cursor 42`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().IntVar(&flagTake, "take", 0, "Page size (0 = config default)")
	leaderboardCmd.Flags().StringVar(&flagCursor, "cursor", "", "Cursor from a previous page")
}

func runLeaderboard(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.svc.Leaderboard(cmd.Context(), flagTake, flagCursor)
	if err != nil {
		return err
	}

	fmt.Println(title("Leaderboard"))
	fmt.Println()

	if len(page.Entries) == 0 {
		fmt.Println("No scores recorded yet.")
		return nil
	}

	best, err := a.svc.HighScore(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Best: %d\n\n", best)

	fmt.Printf("  %-16s  %-10s  %s\n", "Player", "Score", "Date")
	fmt.Printf("  %-16s  %-10s  %s\n", "------", "-----", "----")
	for _, e := range page.Entries {
		fmt.Printf("  %-16s  %-10d  %s\n", e.User, e.Score, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	if page.NextCursor != "" {
		fmt.Println()
		fmt.Printf("More: twentysol leaderboard --cursor %s\n", page.NextCursor)
	}
	return nil
}
