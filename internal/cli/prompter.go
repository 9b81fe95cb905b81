package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gandos21/pocketsync/internal/engine"
	"github.com/gandos21/pocketsync/internal/model"
	"github.com/gandos21/pocketsync/internal/money"
)

// ErrReviewAborted is returned when the reviewer quits the session.
var ErrReviewAborted = errors.New("review aborted")

// ReviewPrompter collects transaction edits interactively. It owns all
// presentation concerns; the engine only sees the resulting edit requests.
type ReviewPrompter struct {
	reader   *LineReader
	out      io.Writer
	session  *model.SessionContext
	maxSplit int
}

// NewReviewPrompter creates a prompter reading from in and writing to out.
func NewReviewPrompter(in io.Reader, out io.Writer, session *model.SessionContext, maxSplit int) *ReviewPrompter {
	return &ReviewPrompter{
		reader:   NewLineReader(in),
		out:      out,
		session:  session,
		maxSplit: maxSplit,
	}
}

// Prompt asks for one field, returning defaultValue on an empty response.
func (p *ReviewPrompter) Prompt(ctx context.Context, label, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Fprintf(p.out, "%s %s: ", PromptStyle.Render(label), SubtleStyle.Render("["+defaultValue+"]"))
	} else {
		fmt.Fprintf(p.out, "%s: ", PromptStyle.Render(label))
	}
	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if line == "" {
		return defaultValue, nil
	}
	return line, nil
}

// PromptYesNo asks a yes/no question defaulting to no.
func (p *ReviewPrompter) PromptYesNo(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s %s ", PromptStyle.Render(question), SubtleStyle.Render("[y/N]"))
	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ShowTransaction renders the pending transaction summary box.
func (p *ReviewPrompter) ShowTransaction(txn model.Transaction) {
	amount := Amount(money.WithSeparators(decimal.NewFromFloat(txn.Amount)), txn.Amount < 0)
	category := txn.Category
	if !p.session.Categories.Has(category) {
		// The remote side assigned a category outside the session index, or
		// none at all; make that stand out.
		category = WarningStyle.Render(category)
	}
	lines := []string{
		fmt.Sprintf("%s  %s  %s", SubtleStyle.Render(fmt.Sprintf("#%d", txn.ID)), txn.Date, txn.Account),
		fmt.Sprintf("%s  %s", amount, category),
		txn.Payee,
	}
	if txn.Note != "" {
		lines = append(lines, SubtleStyle.Render(txn.Note))
	}
	fmt.Fprintln(p.out, BoxStyle.Render(strings.Join(lines, "\n")))
}

// ReviewTransaction presents one pending transaction and collects the edit
// slots for its approval. It returns nil slots when the reviewer skips the
// transaction and ErrReviewAborted when the session is quit.
func (p *ReviewPrompter) ReviewTransaction(ctx context.Context, txn model.Transaction) ([]model.EditRequest, error) {
	p.ShowTransaction(txn)

	fmt.Fprintf(p.out, "%s %s ", PromptStyle.Render("Review"), SubtleStyle.Render("[Enter=edit, s=skip, q=quit]"))
	action, err := p.reader.ReadLine(ctx)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(action) {
	case "s":
		return nil, nil
	case "q":
		return nil, ErrReviewAborted
	}

	main, err := p.promptSlot(ctx, slotDefaults{
		amount:   money.FormatFloat(txn.Amount),
		category: txn.Category,
		payee:    txn.Payee,
		note:     txn.Note,
	})
	if err != nil {
		return nil, err
	}
	slots := []model.EditRequest{main}

	for len(slots) < p.maxSplit {
		remainder, remErr := engine.SplitRemainder(txn.Amount, slots)
		if remErr != nil {
			fmt.Fprintln(p.out, ErrorStyle.Render(remErr.Error()))
			return nil, nil
		}
		if !money.NearZero(remainder) {
			fmt.Fprintf(p.out, "%s %s\n", SubtleStyle.Render("Remaining:"), Amount(money.WithSeparators(remainder), remainder.IsNegative()))
		}
		split, err := p.PromptYesNo(ctx, "Add split entry?")
		if err != nil {
			return nil, err
		}
		if !split {
			break
		}
		slot, err := p.promptSlot(ctx, slotDefaults{
			category: main.Category,
			payee:    main.Payee,
		})
		if err != nil {
			return nil, err
		}
		if slot.IsBlank() {
			break
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

type slotDefaults struct {
	amount   string
	category string
	payee    string
	note     string
}

func (p *ReviewPrompter) promptSlot(ctx context.Context, defaults slotDefaults) (model.EditRequest, error) {
	var req model.EditRequest
	var err error

	if req.Amount, err = p.Prompt(ctx, "Amount", defaults.amount); err != nil {
		return req, err
	}
	if req.Category, err = p.Prompt(ctx, "Category", defaults.category); err != nil {
		return req, err
	}
	if req.Payee, err = p.Prompt(ctx, "Payee", defaults.payee); err != nil {
		return req, err
	}
	if req.Note, err = p.Prompt(ctx, "Note", defaults.note); err != nil {
		return req, err
	}
	if req.TransferTo, err = p.Prompt(ctx, "Transfer to", ""); err != nil {
		return req, err
	}
	return req, nil
}
