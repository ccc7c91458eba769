package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ea-events/internal/decision"
	"github.com/pfrederiksen/ea-events/internal/fetch"
	"github.com/pfrederiksen/ea-events/internal/parse"
	"github.com/pfrederiksen/ea-events/internal/store"
)

var flagHistory bool

func newActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Evaluate signup, waitlist and cancel candidates and confirm each",
		RunE:  runActions,
	}
	cmd.Flags().BoolVar(&flagHistory, "history", false, "print the action log instead of evaluating candidates")
	return cmd
}

func runActions(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	if flagHistory {
		return printHistory(ctx, cmd.OutOrStdout(), db)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	records, err := db.LoadEvents(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no stored events; run 'ea-events scrape' first")
	}

	session, err := fetch.NewSession(cfg.BaseURL, cfg.Username, cfg.Password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	credit := func(url string) (decimal.Decimal, error) {
		page, err := session.SignupPage(url)
		if err != nil {
			return decimal.Zero, err
		}
		if c, ok := parse.Money(page[fetch.FieldCredit]); ok {
			return c, nil
		}
		return decimal.Zero, nil
	}

	candidates := decision.Select(records)
	signups, err := decision.BuildSignupActions(candidates.Signup, credit)
	if err != nil {
		return err
	}

	var pending []decision.PendingAction
	pending = append(pending, signups...)
	pending = append(pending, decision.BuildSimpleActions(decision.ActionWaitlist, candidates.Waitlist)...)
	pending = append(pending, decision.BuildSimpleActions(decision.ActionCancel, candidates.Cancel)...)
	if len(pending) == 0 {
		log.Info("No pending actions")
		return nil
	}

	confirmer := &stdinConfirmer{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
	return decision.NewEngine(db, confirmer, log).Apply(pending)
}

func printHistory(ctx context.Context, w io.Writer, db *store.DB) error {
	history, err := db.ActionHistory(ctx)
	if err != nil {
		return err
	}
	for _, a := range history {
		outcome := "declined"
		if a.Accepted {
			outcome = "accepted"
		}
		fmt.Fprintf(w, "%s  %-8s  %-8s  $%s  %s\n",
			a.OccurredAt, a.Action, outcome, a.Amount.StringFixed(2), a.URL)
	}
	return nil
}

// stdinConfirmer asks y/N on the terminal. Anything other than an explicit
// yes declines.
type stdinConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (c *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
