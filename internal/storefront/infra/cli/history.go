package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type transitionView struct {
	Attempt uint64 `json:"attempt"`
	From    string `json:"from"`
	To      string `json:"to"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"traceId,omitempty"`
	At      string `json:"at"`
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <checkout-id>",
		Short: "Show the recorded state transitions of a checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runHistory(ctx, a, args[0])
			})
		},
	}
}

func runHistory(ctx context.Context, a *app, checkoutID string) error {
	transitions, err := a.db.Transitions().History(ctx, checkoutID)
	if err != nil {
		return err
	}
	if len(transitions) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no checkout %q recorded", checkoutID))
	}

	views := make([]transitionView, len(transitions))
	for i, t := range transitions {
		views[i] = transitionView{
			Attempt: t.Attempt,
			From:    t.From,
			To:      t.To,
			Detail:  t.Detail,
			TraceID: t.TraceID,
			At:      t.At.Format(time.RFC3339),
		}
	}
	return a.out.Success(views, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fprintf(tw, "AT\tATTEMPT\tFROM\tTO\tDETAIL\n")
		for _, v := range views {
			fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", v.At, v.Attempt, v.From, v.To, v.Detail)
		}
		_ = tw.Flush()
	})
}
