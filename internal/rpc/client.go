package rpc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/price"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/operations"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dotandev/scli/internal/assets"
	"github.com/dotandev/scli/internal/envelope"
	"github.com/dotandev/scli/internal/logger"
	"github.com/dotandev/scli/internal/wallet"
)

const (
	txTimeout   = 300
	pageLimit   = 25
	offersLimit = 200
	// maxTxOps is the network's limit on operations per transaction.
	maxTxOps = 100
)

var tracer = otel.Tracer("github.com/dotandev/scli/internal/rpc")

// Client handles interactions with the Stellar Network
type Client struct {
	Horizon    horizonclient.ClientInterface
	Passphrase string
	friendbot  bool
}

// NewClient creates a new RPC client for the specified network.
// horizonURL, when set, replaces the network's default Horizon server.
func NewClient(name, horizonURL string) (*Client, error) {
	var c *Client

	switch name {
	case "testnet":
		c = &Client{
			Horizon:    horizonclient.DefaultTestNetClient,
			Passphrase: network.TestNetworkPassphrase,
			friendbot:  true,
		}
	case "mainnet", "public":
		c = &Client{
			Horizon:    horizonclient.DefaultPublicNetClient,
			Passphrase: network.PublicNetworkPassphrase,
		}
	default:
		return nil, fmt.Errorf("unsupported network: %s (use 'testnet' or 'mainnet')", name)
	}

	if horizonURL != "" {
		c.Horizon = &horizonclient.Client{HorizonURL: horizonURL}
		// friendbot funding is only wired into the default testnet client
		c.friendbot = false
	}
	return c, nil
}

// Balance is one line of an account's holdings.
type Balance struct {
	Asset  string
	Amount string
}

// Payment is a payment or account funding received by an account.
type Payment struct {
	Hash   string
	From   string
	Amount string
	Asset  string
	At     time.Time
}

// Transaction summarizes one entry of an account's history.
type Transaction struct {
	Hash       string
	At         time.Time
	Memo       string
	Successful bool
	Operations []string
}

// Path is one way to deliver a destination amount.
type Path struct {
	SourceAsset       string
	SourceAmount      string
	DestinationAmount string
	Hops              int
}

// ServerInfo describes the Horizon server the client talks to.
type ServerInfo struct {
	HorizonVersion    string
	CoreVersion       string
	NetworkPassphrase string
}

// CreateAccount generates a fresh keypair. On testnet the account is
// funded through friendbot; elsewhere it exists on the ledger only once
// someone sends it a create-account operation.
func (c *Client) CreateAccount(ctx context.Context) (kp *keypair.Full, err error) {
	_, span := tracer.Start(ctx, "rpc.CreateAccount")
	defer func() { finish(span, err) }()

	kp, err = keypair.Random()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	span.SetAttributes(attribute.String("stellar.account", kp.Address()))

	if !c.friendbot {
		logger.Logger.Warn("Account created locally; fund it before use", "address", kp.Address())
		return kp, nil
	}

	if _, err := c.Horizon.Fund(kp.Address()); err != nil {
		return nil, wrapErr("fund account", err)
	}
	logger.Logger.Info("Account funded by friendbot", "address", kp.Address())
	return kp, nil
}

// Balances returns the holdings of address.
func (c *Client) Balances(ctx context.Context, address string) (out []Balance, err error) {
	_, span := tracer.Start(ctx, "rpc.Balances",
		trace.WithAttributes(attribute.String("stellar.account", address)))
	defer func() { finish(span, err) }()

	account, err := c.Horizon.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return nil, wrapErr("load account", err)
	}

	for _, b := range account.Balances {
		out = append(out, Balance{Asset: assetName(hProtocol.Asset(b.Asset)), Amount: b.Balance})
	}
	return out, nil
}

// SendPayment pays amount of asset from src to dest and returns the
// transaction hash. An empty memo sends no memo.
func (c *Client) SendPayment(ctx context.Context, src wallet.Record, dest, amount, memo string, asset txnbuild.Asset) (hash string, err error) {
	ctx, span := tracer.Start(ctx, "rpc.SendPayment")
	defer func() { finish(span, err) }()

	var m txnbuild.Memo
	if memo != "" {
		m = txnbuild.MemoText(memo)
	}
	return c.submit(ctx, "send payment", src, m, &txnbuild.Payment{
		Destination: dest,
		Amount:      amount,
		Asset:       asset,
	})
}

// ChangeTrust sets src's trustline for asset to limit.
func (c *Client) ChangeTrust(ctx context.Context, src wallet.Record, asset txnbuild.Asset, limit string) (hash string, err error) {
	ctx, span := tracer.Start(ctx, "rpc.ChangeTrust")
	defer func() { finish(span, err) }()

	credit, ok := asset.(txnbuild.CreditAsset)
	if !ok {
		return "", fmt.Errorf("cannot add a trustline for the native asset")
	}
	line, err := credit.ToChangeTrustAsset()
	if err != nil {
		return "", fmt.Errorf("failed to create trustline asset: %w", err)
	}
	return c.submit(ctx, "change trust", src, nil, &txnbuild.ChangeTrust{
		Line:  line,
		Limit: limit,
	})
}

// SetHomeDomain sets the home domain of src.
func (c *Client) SetHomeDomain(ctx context.Context, src wallet.Record, domain string) (hash string, err error) {
	ctx, span := tracer.Start(ctx, "rpc.SetHomeDomain")
	defer func() { finish(span, err) }()

	return c.submit(ctx, "set home domain", src, nil, &txnbuild.SetOptions{HomeDomain: &domain})
}

// CreateOffer places a sell offer of amount selling at rate units of
// buying per unit of selling.
func (c *Client) CreateOffer(ctx context.Context, src wallet.Record, selling, buying txnbuild.Asset, rate, amount string) (hash string, err error) {
	ctx, span := tracer.Start(ctx, "rpc.CreateOffer")
	defer func() { finish(span, err) }()

	p, err := price.Parse(rate)
	if err != nil {
		return "", fmt.Errorf("invalid price %q: %w", rate, err)
	}
	return c.submit(ctx, "create offer", src, nil, &txnbuild.ManageSellOffer{
		Selling: selling,
		Buying:  buying,
		Amount:  amount,
		Price:   p,
	})
}

// DeleteOffer removes one of src's open offers.
func (c *Client) DeleteOffer(ctx context.Context, src wallet.Record, offerID int64) (hash string, err error) {
	ctx, span := tracer.Start(ctx, "rpc.DeleteOffer",
		trace.WithAttributes(attribute.Int64("stellar.offer_id", offerID)))
	defer func() { finish(span, err) }()

	offers, err := c.offers(src.Address)
	if err != nil {
		return "", err
	}
	for _, o := range offers {
		if o.ID == offerID {
			return c.submit(ctx, "delete offer", src, nil, deleteOfferOp(o))
		}
	}
	return "", fmt.Errorf("offer %d is not open for %s", offerID, src.Name)
}

// DeleteAllOffers removes every open offer of src, at most maxTxOps
// per transaction. It returns the hash of each submitted transaction in
// order, and none when there was nothing to delete. On failure the hashes
// of the transactions already accepted are still returned.
func (c *Client) DeleteAllOffers(ctx context.Context, src wallet.Record) (hashes []string, n int, err error) {
	ctx, span := tracer.Start(ctx, "rpc.DeleteAllOffers")
	defer func() { finish(span, err) }()

	offers, err := c.offers(src.Address)
	if err != nil {
		return nil, 0, err
	}

	for start := 0; start < len(offers); start += maxTxOps {
		end := min(start+maxTxOps, len(offers))
		ops := make([]txnbuild.Operation, 0, end-start)
		for _, o := range offers[start:end] {
			ops = append(ops, deleteOfferOp(o))
		}

		hash, err := c.submit(ctx, "delete offers", src, nil, ops...)
		if err != nil {
			return hashes, n, err
		}
		hashes = append(hashes, hash)
		n += len(ops)
	}
	return hashes, n, nil
}

// IncomingPayments returns the most recent payments and account fundings
// received by address, newest first.
func (c *Client) IncomingPayments(ctx context.Context, address string) (out []Payment, err error) {
	_, span := tracer.Start(ctx, "rpc.IncomingPayments",
		trace.WithAttributes(attribute.String("stellar.account", address)))
	defer func() { finish(span, err) }()

	page, err := c.Horizon.Payments(horizonclient.OperationRequest{
		ForAccount: address,
		Order:      horizonclient.OrderDesc,
		Limit:      pageLimit,
	})
	if err != nil {
		return nil, wrapErr("list payments", err)
	}

	for _, rec := range page.Embedded.Records {
		switch op := rec.(type) {
		case operations.Payment:
			if op.To != address {
				continue
			}
			out = append(out, Payment{
				Hash:   op.TransactionHash,
				From:   op.From,
				Amount: op.Amount,
				Asset:  assetName(hProtocol.Asset(op.Asset)),
				At:     op.LedgerCloseTime,
			})
		case operations.CreateAccount:
			if op.Account != address {
				continue
			}
			out = append(out, Payment{
				Hash:   op.TransactionHash,
				From:   op.Funder,
				Amount: op.StartingBalance,
				Asset:  assets.NativeCode,
				At:     op.LedgerCloseTime,
			})
		}
	}
	return out, nil
}

// Transactions returns up to limit transactions of address, newest first.
func (c *Client) Transactions(ctx context.Context, address string, limit uint) (out []Transaction, err error) {
	_, span := tracer.Start(ctx, "rpc.Transactions",
		trace.WithAttributes(attribute.String("stellar.account", address)))
	defer func() { finish(span, err) }()

	if limit == 0 {
		limit = pageLimit
	}
	page, err := c.Horizon.Transactions(horizonclient.TransactionRequest{
		ForAccount: address,
		Order:      horizonclient.OrderDesc,
		Limit:      limit,
	})
	if err != nil {
		return nil, wrapErr("list transactions", err)
	}

	for _, t := range page.Embedded.Records {
		tx := Transaction{
			Hash:       t.Hash,
			At:         t.LedgerCloseTime,
			Memo:       t.Memo,
			Successful: t.Successful,
		}
		if env, err := envelope.Decode(t.EnvelopeXdr); err == nil {
			tx.Operations = envelope.OperationTypes(env)
		} else {
			logger.Logger.Debug("Could not decode envelope", "hash", t.Hash, "error", err)
		}
		out = append(out, tx)
	}
	return out, nil
}

// PathsToNative finds payment paths from src that deliver amount of the
// native asset to dest.
func (c *Client) PathsToNative(ctx context.Context, src, dest, amount string) (out []Path, err error) {
	_, span := tracer.Start(ctx, "rpc.PathsToNative")
	defer func() { finish(span, err) }()

	page, err := c.Horizon.Paths(horizonclient.PathsRequest{
		SourceAccount:        src,
		DestinationAccount:   dest,
		DestinationAssetType: horizonclient.AssetTypeNative,
		DestinationAmount:    amount,
	})
	if err != nil {
		return nil, wrapErr("find paths", err)
	}

	for _, p := range page.Embedded.Records {
		out = append(out, Path{
			SourceAsset:       assetName(hProtocol.Asset{Type: p.SourceAssetType, Code: p.SourceAssetCode, Issuer: p.SourceAssetIssuer}),
			SourceAmount:      p.SourceAmount,
			DestinationAmount: p.DestinationAmount,
			Hops:              len(p.Path),
		})
	}
	return out, nil
}

// ServerInfo queries the Horizon root resource.
func (c *Client) ServerInfo(ctx context.Context) (info ServerInfo, err error) {
	_, span := tracer.Start(ctx, "rpc.ServerInfo")
	defer func() { finish(span, err) }()

	root, err := c.Horizon.Root()
	if err != nil {
		return ServerInfo{}, wrapErr("query horizon", err)
	}
	return ServerInfo{
		HorizonVersion:    root.HorizonVersion,
		CoreVersion:       root.StellarCoreVersion,
		NetworkPassphrase: root.NetworkPassphrase,
	}, nil
}

// submit builds, signs and submits a transaction sourced from src.
func (c *Client) submit(ctx context.Context, op string, src wallet.Record, memo txnbuild.Memo, ops ...txnbuild.Operation) (hash string, err error) {
	_, span := tracer.Start(ctx, "rpc.submit", trace.WithAttributes(
		attribute.String("stellar.op", op),
		attribute.String("stellar.account", src.Address),
		attribute.Int("stellar.op_count", len(ops)),
	))
	defer func() { finish(span, err) }()

	kp, err := src.Keypair()
	if err != nil {
		return "", err
	}

	account, err := c.Horizon.AccountDetail(horizonclient.AccountRequest{AccountID: kp.Address()})
	if err != nil {
		return "", wrapErr("load source account", err)
	}

	tx, err := txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount:        &account,
			IncrementSequenceNum: true,
			Operations:           ops,
			BaseFee:              txnbuild.MinBaseFee,
			Memo:                 memo,
			Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(txTimeout)},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	tx, err = tx.Sign(c.Passphrase, kp)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	resp, err := c.Horizon.SubmitTransaction(tx)
	if err != nil {
		return "", wrapErr(op, err)
	}

	logger.Logger.Debug("Transaction submitted", "op", op, "hash", resp.Hash, "ledger", resp.Ledger)
	return resp.Hash, nil
}

// offers lists every open offer of address, following the paging
// cursor until Horizon returns a short page.
func (c *Client) offers(address string) ([]hProtocol.Offer, error) {
	var (
		out    []hProtocol.Offer
		cursor string
	)
	for {
		page, err := c.Horizon.Offers(horizonclient.OfferRequest{
			ForAccount: address,
			Cursor:     cursor,
			Limit:      offersLimit,
		})
		if err != nil {
			return nil, wrapErr("list offers", err)
		}

		records := page.Embedded.Records
		out = append(out, records...)
		if len(records) < offersLimit {
			return out, nil
		}
		cursor = records[len(records)-1].PagingToken()
	}
}

// deleteOfferOp zeroes the amount of an existing offer, which removes it.
func deleteOfferOp(o hProtocol.Offer) *txnbuild.ManageSellOffer {
	return &txnbuild.ManageSellOffer{
		Selling: toTxnAsset(o.Selling),
		Buying:  toTxnAsset(o.Buying),
		Amount:  "0",
		Price:   xdr.Price{N: 1, D: 1},
		OfferID: o.ID,
	}
}

func toTxnAsset(a hProtocol.Asset) txnbuild.Asset {
	if a.Type == "native" {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}

func assetName(a hProtocol.Asset) string {
	if a.Type == "native" || a.Type == "" {
		return assets.NativeCode
	}
	return a.Code + ":" + a.Issuer
}

// ParseOfferID parses an offer id as printed by Horizon.
func ParseOfferID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid offer id %q", s)
	}
	return id, nil
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
