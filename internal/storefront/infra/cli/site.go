package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/delivery-storefront/internal/storefront/core/site"
)

type siteView struct {
	SiteStatus     string `json:"siteStatus"`
	OfflineMessage string `json:"offlineMessage,omitempty"`
}

func NewSiteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Show or change whether the storefront takes orders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current site status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				g := site.NewGate(a.client, entity.SiteAvailability{})
				status, err := g.Refresh(ctx)
				if err != nil {
					return err
				}
				return renderSite(a, status)
			})
		},
	})

	var message string
	setStatus := &cobra.Command{
		Use:   "set-status <ONLINE|OFFLINE>",
		Short: "Open or close ordering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := entity.ParseSiteStatus(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid status", err)
			}
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				g, err := refreshedGate(ctx, a)
				if err != nil {
					return err
				}
				msg := g.Status().OfflineMessage
				if cmd.Flags().Changed("message") {
					msg = message
				}
				if err := g.SetStatus(ctx, status, msg); err != nil {
					return err
				}
				return renderSite(a, g.Status())
			})
		},
	}
	setStatus.Flags().StringVarP(&message, "message", "m", "", "offline message shown to customers")
	cmd.AddCommand(setStatus)

	cmd.AddCommand(&cobra.Command{
		Use:   "set-message <message>",
		Short: "Change the offline message without changing the status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := a.client.SetOfflineMessage(ctx, args[0]); err != nil {
					return err
				}
				g, err := refreshedGate(ctx, a)
				if err != nil {
					return err
				}
				return renderSite(a, g.Status())
			})
		},
	})

	return cmd
}

func refreshedGate(ctx context.Context, a *app) (*site.Gate, error) {
	g := site.NewGate(a.client, entity.SiteAvailability{})
	if _, err := g.Refresh(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func renderSite(a *app, s entity.SiteAvailability) error {
	view := siteView{SiteStatus: string(s.Status), OfflineMessage: s.OfflineMessage}
	return a.out.Success(view, func(w io.Writer) {
		fprintf(w, "Site is %s\n", view.SiteStatus)
		if view.OfflineMessage != "" {
			fprintf(w, "Offline message: %s\n", view.OfflineMessage)
		}
	})
}
