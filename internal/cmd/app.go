package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/dotandev/scli/internal/assets"
	"github.com/dotandev/scli/internal/config"
	"github.com/dotandev/scli/internal/journal"
	"github.com/dotandev/scli/internal/keyfile"
	"github.com/dotandev/scli/internal/logger"
	"github.com/dotandev/scli/internal/rpc"
	"github.com/dotandev/scli/internal/wallet"
)

// masterWallet is the issuing account. Batch verbs never target it.
const masterWallet = "a"

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	infoColor = color.New(color.FgCyan)
)

// Ledger is the part of the Stellar gateway the verbs call.
type Ledger interface {
	CreateAccount(ctx context.Context) (*keypair.Full, error)
	Balances(ctx context.Context, address string) ([]rpc.Balance, error)
	SendPayment(ctx context.Context, src wallet.Record, dest, amount, memo string, asset txnbuild.Asset) (string, error)
	ChangeTrust(ctx context.Context, src wallet.Record, asset txnbuild.Asset, limit string) (string, error)
	SetHomeDomain(ctx context.Context, src wallet.Record, domain string) (string, error)
	CreateOffer(ctx context.Context, src wallet.Record, selling, buying txnbuild.Asset, rate, amount string) (string, error)
	DeleteOffer(ctx context.Context, src wallet.Record, offerID int64) (string, error)
	DeleteAllOffers(ctx context.Context, src wallet.Record) ([]string, int, error)
	IncomingPayments(ctx context.Context, address string) ([]rpc.Payment, error)
	Transactions(ctx context.Context, address string, limit uint) ([]rpc.Transaction, error)
	PathsToNative(ctx context.Context, src, dest, amount string) ([]rpc.Path, error)
	ServerInfo(ctx context.Context) (rpc.ServerInfo, error)
}

// app is the execution context of one command. Every handler reads and
// writes state through it.
type app struct {
	store      *wallet.Store
	assets     *assets.Registry
	ledger     Ledger
	journal    *journal.Journal
	passphrase string
	in         io.Reader
	out        io.Writer
	password   func(prompt string) ([]byte, error)
}

func newApp(cfg *config.Config, in io.Reader, out io.Writer) (*app, error) {
	if cfg.Live {
		logger.Logger.Info("Using live server")
	} else {
		logger.Logger.Info("Using test server")
	}

	store, err := wallet.Open(cfg.WalletFile())
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		logger.Logger.Info("No existing wallet file", "path", cfg.WalletFile())
	}

	client, err := rpc.NewClient(cfg.Network(), cfg.HorizonURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RPC client: %w", err)
	}

	j, err := journal.Open(cfg.JournalFile())
	if err != nil {
		logger.Logger.Warn("Transaction journal disabled", "error", err)
		j = nil
	}

	return &app{
		store:      store,
		assets:     assets.Load(cfg.AssetFile()),
		ledger:     client,
		journal:    j,
		passphrase: client.Passphrase,
		in:         in,
		out:        out,
		password:   keyfile.PromptPassword,
	}, nil
}

func (a *app) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// run executes verb for the named wallet.
func (a *app) run(ctx context.Context, name string, verb Verb, args []string) error {
	switch verb {
	case VerbCreate:
		return a.create(ctx, name)
	case VerbImport:
		return a.importWallet(name, args)
	case VerbBalance:
		return a.balance(ctx, name)
	case VerbSend:
		_, err := a.send(ctx, name, args)
		return err
	case VerbInfo:
		return a.info(name)
	case VerbTx:
		return a.tx(ctx, name, args)
	case VerbTrust:
		return a.trust(ctx, name, args)
	case VerbIssue:
		return a.issue(ctx, name, args)
	case VerbOffer:
		return a.offer(ctx, name, args)
	case VerbOfferDel:
		return a.offerDel(ctx, name, args)
	case VerbPathXLM:
		return a.pathXLM(ctx, name, args)
	case VerbClearOffers:
		return a.clearOffers(ctx, name)
	case VerbDomain:
		return a.domain(ctx, name, args)
	case VerbEncode:
		return a.encode(name, args)
	case VerbDecode:
		return a.decode(name, args)
	case VerbTest:
		return a.test(ctx, name)
	default:
		return fmt.Errorf("operation %s is not implemented", verb)
	}
}

// record journals a submitted transaction. Journal failures never fail
// the command: the transaction is already on the ledger.
func (a *app) record(ctx context.Context, name string, verb Verb, hash string) {
	if a.journal == nil || hash == "" {
		return
	}
	err := a.journal.Record(ctx, journal.Entry{Wallet: name, Verb: verb.String(), Hash: hash})
	if err != nil {
		logger.Logger.Warn("Failed to journal transaction", "hash", hash, "error", err)
	}
}

// destination resolves a wallet name, falling back to a raw account
// address that is not in the store.
func (a *app) destination(nameOrAddress string) (wallet.Record, error) {
	rec, err := a.store.Get(nameOrAddress)
	if err == nil {
		return rec, nil
	}
	if wallet.IsAddress(nameOrAddress) {
		return wallet.Record{Name: nameOrAddress, Address: nameOrAddress}, nil
	}
	return wallet.Record{}, err
}
