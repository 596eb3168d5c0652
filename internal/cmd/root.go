package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotandev/scli/internal/config"
	"github.com/dotandev/scli/internal/logger"
	"github.com/dotandev/scli/internal/telemetry"
)

var (
	live     bool
	cfg      *config.Config
	shutdown telemetry.ShutdownFunc
)

var rootCmd = &cobra.Command{
	Use:   "scli [--live] <wallet> <operation> [args...] | <special> [args...]",
	Short: "scli is a command-line wallet for the Stellar network",
	Long: `scli manages named Stellar accounts stored in a local wallet file and
runs operations against them through a Horizon server.

Wallet operations take the form:
  scli <wallet> <operation> [args...]

Special operations take no wallet:
  scli help
  scli xdr <envelope>
  scli journal [limit]

The test network is used unless LIVE=1 is set or --live is given.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return usagef("missing operation, run 'scli help'")
		}
		return nil
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runWallet,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context
// shared by every operation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if shutdown != nil {
		if serr := shutdown(context.Background()); serr != nil {
			logger.Logger.Warn("Failed to flush traces", "error", serr)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&live, "live", false, "Use the public network instead of testnet")
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(xdrCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if live {
		c.Live = true
	}
	cfg = c

	logger.Init(cfg.LogLevel)

	shutdown, err = telemetry.Init(cmd.Context(), cfg.OTLPEndpoint, "scli", version)
	if err != nil {
		logger.Logger.Warn("Tracing disabled", "error", err)
		shutdown = nil
	}
	return nil
}

func runWallet(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return usagef("special operation does not exist: %s", args[0])
	}

	verb, err := ParseVerb(args[1])
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.run(cmd.Context(), args[0], verb, args[2:])
}
