package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotandev/scli/internal/assets"
	"github.com/dotandev/scli/internal/envelope"
	"github.com/dotandev/scli/internal/journal"
)

const defaultJournalLimit = 20

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "List every operation",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Usage: scli [--live] <wallet> <operation> [args...]")
		fmt.Fprintln(out, "       scli <special> [args...]")
		fmt.Fprintln(out)

		infoColor.Fprintln(out, "Wallet operations:")
		for _, v := range verbTable {
			fmt.Fprintf(out, "  %-12s %s\n", v.name, v.usage)
		}
		fmt.Fprintf(out, "  trust and issue accept %q as the wallet to run for every wallet except %q\n", "all", masterWallet)
		fmt.Fprintln(out)

		infoColor.Fprintln(out, "Special operations:")
		fmt.Fprintln(out, "  help")
		fmt.Fprintln(out, "  xdr          <envelope>")
		fmt.Fprintln(out, "  journal      [limit]")
		fmt.Fprintln(out, "  version")

		if cfg != nil {
			if codes := assets.Load(cfg.AssetFile()).Codes(); len(codes) > 0 {
				fmt.Fprintln(out)
				infoColor.Fprintln(out, "Assets:")
				fmt.Fprintf(out, "  %s %s\n", assets.NativeCode, strings.Join(codes, " "))
			}
		}
		return nil
	},
}

var xdrCmd = &cobra.Command{
	Use:   "xdr <envelope>",
	Short: "Decode a base64 transaction envelope",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usagef("usage: scli xdr <envelope>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := envelope.Decode(args[0])
		if err != nil {
			return err
		}
		return envelope.Print(cmd.OutOrStdout(), env)
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal [limit]",
	Short: "List transactions submitted from this machine",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := defaultJournalLimit
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return usagef("invalid journal limit: %s", args[0])
			}
			limit = n
		}

		j, err := journal.Open(cfg.JournalFile())
		if err != nil {
			return err
		}
		defer j.Close()

		entries, err := j.List(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No transactions recorded")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s %-8s %-12s %s\n", e.CreatedAt.Format(time.RFC3339), e.Wallet, e.Verb, e.Hash)
		}
		return nil
	},
}
