package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gandos21/pocketsync/internal/cli"
	"github.com/gandos21/pocketsync/internal/config"
	"github.com/gandos21/pocketsync/internal/model"
)

func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Create a manual transaction",
		Long: `Posts a manual transaction, prompting for each field. Naming a transfer
account creates the opposing entry in that account with the amount negated.
Field values are remembered between sessions.`,
		RunE: runPost,
	}
}

func runPost(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	prompter := cli.NewReviewPrompter(os.Stdin, os.Stdout, eng.Session(), eng.MaxSplitSlots())

	path, err := defaultsPath()
	if err != nil {
		return err
	}
	defaults := config.LoadDefaults(path)
	if defaults.Date == "" {
		defaults.Date = time.Now().Format(model.DateLayouts[0])
	}

	var req model.EditRequest
	// New transactions always come back flagged for review no matter what we
	// request here.
	req.NeedsReview = true
	if req.Date, err = prompter.Prompt(ctx, "Date", defaults.Date); err != nil {
		return err
	}
	if req.Account, err = prompter.Prompt(ctx, "Account", defaults.Account); err != nil {
		return err
	}
	if req.Amount, err = prompter.Prompt(ctx, "Amount", defaults.Amount); err != nil {
		return err
	}
	if req.Category, err = prompter.Prompt(ctx, "Category", defaults.Category); err != nil {
		return err
	}
	if req.Payee, err = prompter.Prompt(ctx, "Payee", defaults.Payee); err != nil {
		return err
	}
	if req.Note, err = prompter.Prompt(ctx, "Note", defaults.Note); err != nil {
		return err
	}
	if req.TransferTo, err = prompter.Prompt(ctx, "Transfer to", defaults.TransferTo); err != nil {
		return err
	}

	result, err := eng.Post(ctx, req, true)
	if err != nil {
		fmt.Println(cli.ErrorStyle.Render(err.Error()))
		return err
	}
	fmt.Println(cli.SuccessStyle.Render(result.Message))

	saved := config.FieldDefaults{
		Date:       req.Date,
		Payee:      req.Payee,
		Amount:     req.Amount,
		Category:   req.Category,
		Note:       req.Note,
		Account:    req.Account,
		TransferTo: req.TransferTo,
	}
	if err := config.SaveDefaults(path, saved); err != nil {
		slog.Warn("Field defaults not saved", "error", err)
	}
	return nil
}
