package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/ea-events/internal/decision"
	"github.com/pfrederiksen/ea-events/internal/store"
)

var (
	flagMarkSignup   bool
	flagMarkWaitlist bool
	flagMarkCancel   bool
)

func newMarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark <event-url>",
		Short: "Flag a stored event for signup, waitlist or cancel",
		Args:  cobra.ExactArgs(1),
		RunE:  runMark,
	}
	cmd.Flags().BoolVar(&flagMarkSignup, "sign-up", false, "request signup")
	cmd.Flags().BoolVar(&flagMarkWaitlist, "wait-list", false, "request waitlisting")
	cmd.Flags().BoolVar(&flagMarkCancel, "cancel", false, "request cancellation")
	return cmd
}

func runMark(cmd *cobra.Command, args []string) error {
	action, err := markAction(flagMarkSignup, flagMarkWaitlist, flagMarkCancel)
	if err != nil {
		return err
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SetMarker(context.Background(), args[0], action); err != nil {
		return err
	}
	log.WithField("url", args[0]).Infof("Marked for %s", action)
	return nil
}

func markAction(signup, waitlist, cancel bool) (string, error) {
	var actions []string
	if signup {
		actions = append(actions, decision.ActionSignup)
	}
	if waitlist {
		actions = append(actions, decision.ActionWaitlist)
	}
	if cancel {
		actions = append(actions, decision.ActionCancel)
	}
	if len(actions) != 1 {
		return "", fmt.Errorf("exactly one of --sign-up, --wait-list or --cancel is required")
	}
	return actions[0], nil
}
