package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotandev/scli/internal/keyfile"
	"github.com/dotandev/scli/internal/wallet"
)

func (a *app) create(ctx context.Context, name string) error {
	if _, err := a.store.Get(name); err == nil {
		return fmt.Errorf("%w: %s", wallet.ErrAlreadyExists, name)
	}

	kp, err := a.ledger.CreateAccount(ctx)
	if err != nil {
		return err
	}

	if err := a.store.Add(name, wallet.Record{Address: kp.Address(), Seed: kp.Seed()}); err != nil {
		return err
	}
	if err := a.store.Save(); err != nil {
		return err
	}

	okColor.Fprintf(a.out, "✓ Created account %s: %s\n", name, kp.Address())
	return nil
}

func (a *app) importWallet(name string, args []string) error {
	if err := need(VerbImport, args, 1); err != nil {
		return err
	}
	if _, err := a.store.Get(name); err == nil {
		return fmt.Errorf("%w: %s", wallet.ErrAlreadyExists, name)
	}

	rec, err := wallet.Parse(name, args[0])
	if err != nil {
		return err
	}
	if err := a.store.Add(name, rec); err != nil {
		return err
	}
	if err := a.store.Save(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "imported account: %s\n", rec.Address)
	if rec.WatchOnly() {
		warnColor.Fprintln(a.out, "(watch only: no seed stored)")
	}
	return nil
}

func (a *app) info(name string) error {
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, rec.Address)
	if rec.WatchOnly() {
		warnColor.Fprintln(a.out, "(no seed)")
	} else {
		fmt.Fprintln(a.out, rec.Seed)
	}
	if rec.Memo != "" {
		fmt.Fprintf(a.out, "memo: %s\n", rec.Memo)
	}
	return nil
}

func (a *app) balance(ctx context.Context, name string) error {
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}

	balances, err := a.ledger.Balances(ctx, rec.Address)
	if err != nil {
		return err
	}

	infoColor.Fprintf(a.out, "%s (%s)\n", name, rec.Address)
	for _, b := range balances {
		fmt.Fprintf(a.out, "  %s %s\n", b.Amount, b.Asset)
	}
	return nil
}

// encode writes the wallet's address and seed to a password protected
// key file.
func (a *app) encode(name string, args []string) error {
	if err := need(VerbEncode, args, 1); err != nil {
		return err
	}
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}
	if rec.WatchOnly() {
		return fmt.Errorf("%w: %s", wallet.ErrWatchOnly, name)
	}

	pass, err := a.passwordArg(args, 1)
	if err != nil {
		return err
	}
	defer clear(pass)

	plaintext := []byte(rec.Address + "." + rec.Seed)
	defer clear(plaintext)

	if err := keyfile.Write(args[0], plaintext, pass); err != nil {
		return err
	}
	okColor.Fprintf(a.out, "✓ Wrote key file for %s to %s\n", name, args[0])
	return nil
}

// decode opens a key file written by encode and checks it against the
// stored wallet.
func (a *app) decode(name string, args []string) error {
	if err := need(VerbDecode, args, 1); err != nil {
		return err
	}
	rec, err := a.store.Get(name)
	if err != nil {
		return err
	}

	pass, err := a.passwordArg(args, 1)
	if err != nil {
		return err
	}
	defer clear(pass)

	plaintext, err := keyfile.Read(args[0], pass)
	if err != nil {
		return err
	}
	defer clear(plaintext)

	address, seed, ok := strings.Cut(string(plaintext), ".")
	if !ok {
		return fmt.Errorf("key file %s has an unexpected layout", args[0])
	}

	fmt.Fprintln(a.out, address)
	fmt.Fprintln(a.out, seed)
	if address != rec.Address {
		warnColor.Fprintf(a.out, "(Warning): key file address does not match wallet %s (%s)\n", name, rec.Address)
	}
	return nil
}

func (a *app) passwordArg(args []string, i int) ([]byte, error) {
	if p := arg(args, i, ""); p != "" {
		return []byte(p), nil
	}
	return a.password("Enter key file password: ")
}
