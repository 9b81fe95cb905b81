package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/gandos21/pocketsync/internal/cli"
	"github.com/gandos21/pocketsync/internal/money"
)

const (
	payeeColumnWidth = 40
	noteColumnWidth  = 40
)

func transactionsCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List recent transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			result, err := eng.FetchPage(ctx, page)
			if err != nil {
				return err
			}

			fmt.Printf("Recent %d transactions:\n", len(result.All))
			for _, txn := range result.All {
				state := "Approved"
				if txn.NeedsReview {
					state = "  New   "
				}
				amount := fmt.Sprintf("$%11s", money.WithSeparators(decimal.NewFromFloat(txn.Amount)))
				fmt.Printf(" %d | %s | %s | %-9s | %-7s | %s | %-*.*s | %-*.*s |\n",
					txn.ID, state, txn.Date, txn.UploadSource, txn.Status,
					cli.Amount(amount, txn.Amount < 0),
					payeeColumnWidth, payeeColumnWidth, txn.Payee,
					noteColumnWidth, noteColumnWidth, txn.Note)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "result page to fetch")
	return cmd
}
