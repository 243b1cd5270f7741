// twentysol plays persisted 2048 games that pay token rewards.
//
// Usage:
//
//	twentysol new                    - Start a game for --wallet
//	twentysol move <id> <dir>...     - Apply moves (up/down/left/right or w/a/s/d)
//	twentysol show <id>              - Show a game
//	twentysol finish <id>            - Finish a game and collect its reward
//	twentysol games                  - List the games of --wallet
//	twentysol leaderboard            - Show finished scores
//	twentysol play                   - Play interactively on stdin
//	twentysol rewards                - List token rewards of --wallet
//	twentysol rename <name>          - Set the leaderboard name of --wallet
//
// Global flags:
//
//	--wallet <addr>     - Wallet address (default: $TWENTYSOL_WALLET)
//	--config <path>     - Config file
//	--db <path>         - Database path (default: ~/.twentysol/twentysol.db)
//	--seed <value>      - RNG seed for reproducible tile spawns
//	--log-level <lvl>   - debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagWallet   string
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "twentysol",
	Short: "Twenty-Sol - 2048 with token rewards",
	Long: `Twenty-Sol keeps 2048 games in a local database. Every game belongs to a
wallet; finishing a game with a high enough score mints a token reward.

Available commands:
  new          - Start a new game
  move         - Apply moves to a game
  show         - Show a game
  finish       - Finish a game and collect its reward
  games        - List your games
  leaderboard  - Show the best finished scores
  play         - Play interactively
  rewards      - List your token rewards
  rename       - Set your leaderboard name

Examples:
  twentysol new --wallet <addr>
  twentysol move <id> left up up
  twentysol finish <id>
  twentysol leaderboard --take 10`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagWallet, "wallet", os.Getenv("TWENTYSOL_WALLET"), "Wallet address")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(renameCmd)
}
