package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "List your token rewards",
	Args:  cobra.NoArgs,
	RunE:  runRewards,
}

var renameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Set your leaderboard name",
	Long: `Set the name shown for --wallet on the leaderboard. An empty name
falls back to the shortened wallet address.

Examples:
  twentysol rename tilemaster
  twentysol rename ""`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func runRewards(cmd *cobra.Command, _ []string) error {
	wallet, err := requireWallet()
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	txs, err := a.svc.Transactions(cmd.Context(), wallet)
	if err != nil {
		return err
	}

	if len(txs) == 0 {
		fmt.Println("No rewards yet.")
		fmt.Println()
		fmt.Printf("Finish a game with %d points or more to earn tokens.\n", a.cfg.Rewards.Threshold)
		return nil
	}

	var total int64
	fmt.Printf("  %-8s  %-36s  %-9s  %s\n", "Tokens", "Game", "Status", "Transaction")
	fmt.Printf("  %-8s  %-36s  %-9s  %s\n", "------", "----", "------", "-----------")
	for _, tx := range txs {
		fmt.Printf("  %-8d  %-36s  %-9s  %s\n", tx.Amount, tx.SessionID, tx.Status, tx.TxHash)
		if !tx.Pending() {
			total += tx.Amount
		}
	}

	fmt.Println()
	fmt.Printf("Total: %d tokens\n", total)
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	wallet, err := requireWallet()
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Rename(cmd.Context(), wallet, args[0]); err != nil {
		return err
	}

	fmt.Println("Name updated.")
	return nil
}
