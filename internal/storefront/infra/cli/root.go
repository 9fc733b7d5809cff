// Package cli is the storefront's command line: the customer cart and
// checkout flow plus the operator's site and order controls.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	Session    string // overrides storage.session
	LogLevel   string // overrides log.level
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Order from the delivery storefront",
		Long: `Build a cart against the live catalog and submit it as an order.

A submission that runs into a stock change stops with the conflicting
lines and asks whether to order the reduced quantities instead.
Operators can open or close ordering and complete or cancel orders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Session, "session", "", "cart session to use (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewSiteCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))

	return cmd
}
