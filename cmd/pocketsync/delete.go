package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gandos21/pocketsync/internal/cli"
)

// testTransactionMarker tags throwaway transactions created while testing;
// they carry this keyword in their note field.
const testTransactionMarker = "TEST TRANS"

func deleteCmd() *cobra.Command {
	var purgeTest bool
	cmd := &cobra.Command{
		Use:   "delete [transaction-id]",
		Short: "Delete a transaction",
		Long: `Deletes a single transaction by id, or with --test-transactions deletes
every transaction on the most recent page whose note contains "Test Trans".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}

			if purgeTest {
				page, err := eng.FetchPage(ctx, 1)
				if err != nil {
					return err
				}
				var targets []int64
				for _, txn := range page.All {
					if strings.Contains(strings.ToUpper(txn.Note), testTransactionMarker) {
						targets = append(targets, txn.ID)
					}
				}
				if len(targets) == 0 {
					fmt.Println(cli.SubtleStyle.Render("No test transactions found"))
					return nil
				}

				bar := progressbar.Default(int64(len(targets)), "deleting")
				deleted := 0
				for _, id := range targets {
					if err := eng.Delete(ctx, id); err != nil {
						fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("Transaction %d deletion failed: %v", id, err)))
						continue
					}
					deleted++
					_ = bar.Add(1)
				}
				fmt.Printf("Deleted %d of %d test transactions\n", deleted, len(targets))
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("transaction id required (or use --test-transactions)")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}
			if err := eng.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Transaction %d successfully deleted", id)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&purgeTest, "test-transactions", false, "delete all transactions noted as test transactions")
	return cmd
}
