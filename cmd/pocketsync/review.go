package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gandos21/pocketsync/internal/cli"
	"github.com/gandos21/pocketsync/internal/engine"
	"github.com/gandos21/pocketsync/internal/model"
)

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review and confirm pending transactions",
		Long: `Fetches the transactions flagged for review, auto-clears the ones that were
already approved in a previous session with unchanged data, and walks through
the rest interactively. Each transaction can be confirmed as-is, edited,
turned into a double-entry transfer, or split into multiple entries.`,
		RunE: runReview,
	}
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	prompter := cli.NewReviewPrompter(os.Stdin, os.Stdout, eng.Session(), eng.MaxSplitSlots())

	for {
		pending, err := fetchAndAutoClear(ctx, eng)
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			fmt.Println(cli.SuccessStyle.Render("No new transactions to review"))
			return nil
		}

		fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d transactions to review", len(pending))))
		for _, txn := range pending {
			if err := reviewOne(ctx, eng, prompter, txn); err != nil {
				if errors.Is(err, cli.ErrReviewAborted) {
					return nil
				}
				return err
			}
		}

		again, err := prompter.PromptYesNo(ctx, "Check for new transactions?")
		if err != nil || !again {
			return err
		}
	}
}

func fetchAndAutoClear(ctx context.Context, eng *engine.Engine) ([]model.Transaction, error) {
	page, err := eng.FetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	pending, cleared := eng.AutoClear(ctx, page.Pending)
	if len(cleared) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No transactions were auto cleared."))
		return pending, nil
	}
	for _, c := range cleared {
		line := fmt.Sprintf("%s | %s | %s | %s | %s",
			c.Record.Date, c.Record.Account, c.Record.Amount, c.Record.Category, c.Transaction.Payee)
		if c.Err != nil {
			fmt.Println(cli.ErrorStyle.Render("Auto clearing failed: " + line))
			continue
		}
		fmt.Println(cli.SuccessStyle.Render("Auto cleared re-approval: " + line))
	}
	return pending, nil
}

func reviewOne(ctx context.Context, eng *engine.Engine, prompter *cli.ReviewPrompter, txn model.Transaction) error {
	for {
		slots, err := prompter.ReviewTransaction(ctx, txn)
		if err != nil {
			return err
		}
		if slots == nil {
			return nil // skipped
		}

		result, err := eng.Approve(ctx, txn, slots)
		if err != nil {
			var vErr *model.ValidationError
			if errors.As(err, &vErr) {
				// Bad input, nothing was sent; let the reviewer fix it
				fmt.Println(cli.ErrorStyle.Render(vErr.Reason))
				continue
			}
			fmt.Println(cli.ErrorStyle.Render(err.Error()))
			return err
		}

		fmt.Println(cli.SuccessStyle.Render(result.Message))
		return nil
	}
}
