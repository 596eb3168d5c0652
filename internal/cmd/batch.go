package cmd

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/dotandev/scli/internal/assets"
	"github.com/dotandev/scli/internal/logger"
	"github.com/dotandev/scli/internal/wallet"
)

const (
	defaultTrustLimit  = "1000000"
	defaultIssueAmount = "1000"
)

// forEach runs fn for every wallet selected by selector except the
// master wallet. Failures are reported and collected; they never stop
// the remaining wallets from being processed.
func (a *app) forEach(ctx context.Context, verb Verb, selector string, fn func(wallet.Record) (string, error)) error {
	group, err := a.store.Group(selector)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, w := range group {
		if w.Name == masterWallet {
			continue
		}
		if err := ctx.Err(); err != nil {
			return multierror.Append(result, err)
		}

		hash, err := fn(w)
		if err != nil {
			logger.Logger.Error("Batch operation failed", "operation", verb.String(), "wallet", w.Name, "error", err)
			failColor.Fprintf(a.out, "✗ %s: %v\n", w.Name, err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", w.Name, err))
			continue
		}

		a.record(ctx, w.Name, verb, hash)
		okColor.Fprintf(a.out, "✓ %s: %s\n", w.Name, hash)
	}
	return result.ErrorOrNil()
}

// trust adds a trustline for an asset to every selected wallet.
func (a *app) trust(ctx context.Context, selector string, args []string) error {
	if err := need(VerbTrust, args, 1); err != nil {
		return err
	}
	asset, err := a.assets.Resolve(args[0])
	if err != nil {
		return err
	}
	if asset.IsNative() {
		return usagef("the native asset needs no trustline")
	}
	limit := arg(args, 1, defaultTrustLimit)

	infoColor.Fprintf(a.out, "Trusting %s (limit %s) for %s\n", asset.GetCode(), limit, selector)
	return a.forEach(ctx, VerbTrust, selector, func(w wallet.Record) (string, error) {
		return a.ledger.ChangeTrust(ctx, w, asset, limit)
	})
}

// issue pays every selected wallet from the master wallet.
func (a *app) issue(ctx context.Context, selector string, args []string) error {
	amount := arg(args, 0, defaultIssueAmount)
	asset, err := a.assets.Resolve(arg(args, 1, ""))
	if err != nil {
		return err
	}

	master, err := a.store.Get(masterWallet)
	if err != nil {
		return fmt.Errorf("issuing needs a master account named %q: %w", masterWallet, err)
	}
	if master.WatchOnly() {
		return fmt.Errorf("cannot issue from %s: %w", masterWallet, wallet.ErrWatchOnly)
	}

	infoColor.Fprintf(a.out, "Issuing %s %s from %s to %s\n", amount, assets.Code(asset), masterWallet, selector)
	return a.forEach(ctx, VerbIssue, selector, func(w wallet.Record) (string, error) {
		return a.ledger.SendPayment(ctx, master, w.Address, amount, "", asset)
	})
}
