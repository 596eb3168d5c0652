package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/dotandev/scli/internal/logger"
	"github.com/dotandev/scli/internal/rpc"
)

const historyLimit = 25

// minHorizonVersion is the oldest Horizon API release the gateway is
// tested against.
var minHorizonVersion = goversion.Must(goversion.NewVersion("2.0.0"))

func (a *app) tx(ctx context.Context, name string, args []string) error {
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}

	if arg(args, 0, "") == "all" {
		txs, err := a.ledger.Transactions(ctx, rec.Address, historyLimit)
		if err != nil {
			return err
		}
		infoColor.Fprintf(a.out, "Listing transactions for %s\n", rec.Address)
		for _, t := range txs {
			status := okColor.Sprint("ok")
			if !t.Successful {
				status = failColor.Sprint("failed")
			}
			fmt.Fprintf(a.out, "%s %s %s ops=%s memo=%q\n",
				t.At.Format(time.RFC3339), t.Hash, status, strings.Join(t.Operations, ","), t.Memo)
		}
		return nil
	}

	payments, err := a.ledger.IncomingPayments(ctx, rec.Address)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		fmt.Fprintln(a.out, "No incoming payments")
		return nil
	}
	for _, p := range payments {
		fmt.Fprintf(a.out, "%s %s %s from %s (%s)\n", p.At.Format(time.RFC3339), p.Amount, p.Asset, p.From, p.Hash)
	}
	return nil
}

func (a *app) offer(ctx context.Context, name string, args []string) error {
	if err := need(VerbOffer, args, 4); err != nil {
		return err
	}
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}
	selling, err := a.assets.Resolve(args[0])
	if err != nil {
		return err
	}
	buying, err := a.assets.Resolve(args[1])
	if err != nil {
		return err
	}

	hash, err := a.ledger.CreateOffer(ctx, rec, selling, buying, args[2], args[3])
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	a.record(ctx, name, VerbOffer, hash)
	okColor.Fprintf(a.out, "✓ Offer created: %s\n", hash)
	return nil
}

func (a *app) offerDel(ctx context.Context, name string, args []string) error {
	if err := need(VerbOfferDel, args, 1); err != nil {
		return err
	}
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}
	id, err := rpc.ParseOfferID(args[0])
	if err != nil {
		return usagef("%v", err)
	}

	hash, err := a.ledger.DeleteOffer(ctx, rec, id)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	a.record(ctx, name, VerbOfferDel, hash)
	okColor.Fprintf(a.out, "✓ Offer %d deleted: %s\n", id, hash)
	return nil
}

func (a *app) clearOffers(ctx context.Context, name string) error {
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}

	hashes, n, err := a.ledger.DeleteAllOffers(ctx, rec)
	for _, hash := range hashes {
		a.record(ctx, name, VerbClearOffers, hash)
	}
	if err != nil {
		if n > 0 {
			warnColor.Fprintf(a.out, "(Warning): %d offers were deleted before the failure\n", n)
		}
		return fmt.Errorf("failed to clear offers: %w", err)
	}
	if n == 0 {
		fmt.Fprintln(a.out, "No open offers")
		return nil
	}
	okColor.Fprintf(a.out, "✓ Deleted %d offers: %s\n", n, strings.Join(hashes, " "))
	return nil
}

func (a *app) pathXLM(ctx context.Context, name string, args []string) error {
	if err := need(VerbPathXLM, args, 2); err != nil {
		return err
	}
	src, err := a.store.Get(name)
	if err != nil {
		return err
	}
	dest, err := a.destination(args[0])
	if err != nil {
		return err
	}

	paths, err := a.ledger.PathsToNative(ctx, src.Address, dest.Address, args[1])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(a.out, "No paths found")
		return nil
	}
	for _, p := range paths {
		fmt.Fprintf(a.out, "%s %s -> %s XLM (%d hops)\n", p.SourceAmount, p.SourceAsset, p.DestinationAmount, p.Hops)
	}
	return nil
}

func (a *app) domain(ctx context.Context, name string, args []string) error {
	if err := need(VerbDomain, args, 1); err != nil {
		return err
	}
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "setting home domain to %s\n", args[0])
	hash, err := a.ledger.SetHomeDomain(ctx, rec, args[0])
	if err != nil {
		return err
	}
	a.record(ctx, name, VerbDomain, hash)
	okColor.Fprintf(a.out, "✓ Home domain set: %s\n", hash)
	return nil
}

// test checks that the configured Horizon server is reachable, on the
// expected network and recent enough, then that the wallet's account
// exists on it.
func (a *app) test(ctx context.Context, name string) error {
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}

	info, err := a.ledger.ServerInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Horizon: %s\nCore: %s\nNetwork: %s\n", info.HorizonVersion, info.CoreVersion, info.NetworkPassphrase)

	if info.NetworkPassphrase != a.passphrase {
		return fmt.Errorf("horizon serves %q, expected %q", info.NetworkPassphrase, a.passphrase)
	}

	v, err := goversion.NewVersion(strings.TrimPrefix(info.HorizonVersion, "horizon-v"))
	switch {
	case err != nil:
		logger.Logger.Warn("Could not parse Horizon version", "version", info.HorizonVersion, "error", err)
	case v.LessThan(minHorizonVersion):
		warnColor.Fprintf(a.out, "(Warning): Horizon %s is older than %s\n", v, minHorizonVersion)
	}

	balances, err := a.ledger.Balances(ctx, rec.Address)
	if err != nil {
		return fmt.Errorf("account %s is not usable: %w", name, err)
	}
	okColor.Fprintf(a.out, "✓ %s is active with %d balances\n", name, len(balances))
	return nil
}
