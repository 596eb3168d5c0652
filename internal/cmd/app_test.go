package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/scli/internal/assets"
	"github.com/dotandev/scli/internal/rpc"
	"github.com/dotandev/scli/internal/wallet"
)

var usdIssuer = keypair.MustRandom().Address()

var usd = txnbuild.CreditAsset{Code: "USD", Issuer: usdIssuer}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) CreateAccount(ctx context.Context) (*keypair.Full, error) {
	args := m.Called(ctx)
	kp, _ := args.Get(0).(*keypair.Full)
	return kp, args.Error(1)
}

func (m *mockLedger) Balances(ctx context.Context, address string) ([]rpc.Balance, error) {
	args := m.Called(ctx, address)
	out, _ := args.Get(0).([]rpc.Balance)
	return out, args.Error(1)
}

func (m *mockLedger) SendPayment(ctx context.Context, src wallet.Record, dest, amount, memo string, asset txnbuild.Asset) (string, error) {
	args := m.Called(ctx, src, dest, amount, memo, asset)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) ChangeTrust(ctx context.Context, src wallet.Record, asset txnbuild.Asset, limit string) (string, error) {
	args := m.Called(ctx, src, asset, limit)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) SetHomeDomain(ctx context.Context, src wallet.Record, domain string) (string, error) {
	args := m.Called(ctx, src, domain)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) CreateOffer(ctx context.Context, src wallet.Record, selling, buying txnbuild.Asset, rate, amount string) (string, error) {
	args := m.Called(ctx, src, selling, buying, rate, amount)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) DeleteOffer(ctx context.Context, src wallet.Record, offerID int64) (string, error) {
	args := m.Called(ctx, src, offerID)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) DeleteAllOffers(ctx context.Context, src wallet.Record) ([]string, int, error) {
	args := m.Called(ctx, src)
	hashes, _ := args.Get(0).([]string)
	return hashes, args.Int(1), args.Error(2)
}

func (m *mockLedger) IncomingPayments(ctx context.Context, address string) ([]rpc.Payment, error) {
	args := m.Called(ctx, address)
	out, _ := args.Get(0).([]rpc.Payment)
	return out, args.Error(1)
}

func (m *mockLedger) Transactions(ctx context.Context, address string, limit uint) ([]rpc.Transaction, error) {
	args := m.Called(ctx, address, limit)
	out, _ := args.Get(0).([]rpc.Transaction)
	return out, args.Error(1)
}

func (m *mockLedger) PathsToNative(ctx context.Context, src, dest, amount string) ([]rpc.Path, error) {
	args := m.Called(ctx, src, dest, amount)
	out, _ := args.Get(0).([]rpc.Path)
	return out, args.Error(1)
}

func (m *mockLedger) ServerInfo(ctx context.Context) (rpc.ServerInfo, error) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(rpc.ServerInfo)
	return info, args.Error(1)
}

func newRecord(t *testing.T, name string) wallet.Record {
	t.Helper()
	kp, err := keypair.Random()
	require.NoError(t, err)
	return wallet.Record{Name: name, Address: kp.Address(), Seed: kp.Seed()}
}

func watchRecord(t *testing.T, name string) wallet.Record {
	t.Helper()
	rec := newRecord(t, name)
	rec.Seed = ""
	return rec
}

type testApp struct {
	*app
	ledger *mockLedger
	out    *bytes.Buffer
}

func newTestApp(t *testing.T, in io.Reader, recs ...wallet.Record) *testApp {
	t.Helper()

	store, err := wallet.Open(filepath.Join(t.TempDir(), "wallets.json"))
	require.NoError(t, err)
	for _, rec := range recs {
		require.NoError(t, store.Add(rec.Name, rec))
	}

	if in == nil {
		in = strings.NewReader("")
	}
	ledger := &mockLedger{}
	out := &bytes.Buffer{}
	return &testApp{
		app: &app{
			store:      store,
			assets:     assets.New(map[string]assets.Descriptor{"usd": {Code: "USD", Issuer: usdIssuer}}),
			ledger:     ledger,
			passphrase: "Test SDF Network ; September 2015",
			in:         in,
			out:        out,
			password: func(string) ([]byte, error) {
				return []byte("secret"), nil
			},
		},
		ledger: ledger,
		out:    out,
	}
}

func TestCreate(t *testing.T) {
	ta := newTestApp(t, nil)
	kp := keypair.MustRandom()
	ta.ledger.On("CreateAccount", mock.Anything).Return(kp, nil).Once()

	require.NoError(t, ta.run(context.Background(), "alice", VerbCreate, nil))
	assert.Contains(t, ta.out.String(), kp.Address())

	reopened, err := wallet.Open(ta.store.Path())
	require.NoError(t, err)
	rec, err := reopened.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), rec.Address)
	assert.Equal(t, kp.Seed(), rec.Seed)
	ta.ledger.AssertExpectations(t)
}

func TestCreateExistingWallet(t *testing.T) {
	alice := newRecord(t, "alice")
	ta := newTestApp(t, nil, alice)

	err := ta.run(context.Background(), "alice", VerbCreate, nil)
	assert.ErrorIs(t, err, wallet.ErrAlreadyExists)
	ta.ledger.AssertNotCalled(t, "CreateAccount", mock.Anything)

	rec, err := ta.store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, alice.Seed, rec.Seed)
}

func TestImport(t *testing.T) {
	kp := keypair.MustRandom()

	t.Run("seed", func(t *testing.T) {
		ta := newTestApp(t, nil)
		require.NoError(t, ta.run(context.Background(), "bob", VerbImport, []string{kp.Seed()}))

		rec, err := ta.store.Get("bob")
		require.NoError(t, err)
		assert.Equal(t, kp.Address(), rec.Address)
		assert.Equal(t, kp.Seed(), rec.Seed)
	})

	t.Run("address", func(t *testing.T) {
		ta := newTestApp(t, nil)
		require.NoError(t, ta.run(context.Background(), "bob", VerbImport, []string{kp.Address()}))

		rec, err := ta.store.Get("bob")
		require.NoError(t, err)
		assert.True(t, rec.WatchOnly())
		assert.Contains(t, ta.out.String(), "watch only")
	})

	t.Run("invalid key leaves store unchanged", func(t *testing.T) {
		ta := newTestApp(t, nil)
		err := ta.run(context.Background(), "bob", VerbImport, []string{"not-a-key"})
		assert.ErrorIs(t, err, wallet.ErrInvalidKey)
		assert.Equal(t, 0, ta.store.Len())

		_, statErr := os.Stat(ta.store.Path())
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing argument", func(t *testing.T) {
		ta := newTestApp(t, nil)
		err := ta.run(context.Background(), "bob", VerbImport, nil)
		assert.True(t, IsUsage(err))
	})
}

func TestInfo(t *testing.T) {
	alice := newRecord(t, "alice")
	watch := watchRecord(t, "watch")
	ta := newTestApp(t, nil, alice, watch)

	require.NoError(t, ta.run(context.Background(), "alice", VerbInfo, nil))
	assert.Contains(t, ta.out.String(), alice.Seed)

	ta.out.Reset()
	require.NoError(t, ta.run(context.Background(), "watch", VerbInfo, nil))
	assert.Contains(t, ta.out.String(), "(no seed)")

	err := ta.run(context.Background(), "nobody", VerbInfo, nil)
	assert.ErrorIs(t, err, wallet.ErrNotFound)
}

func TestBalance(t *testing.T) {
	alice := newRecord(t, "alice")
	ta := newTestApp(t, nil, alice)
	ta.ledger.On("Balances", mock.Anything, alice.Address).
		Return([]rpc.Balance{{Asset: "XLM", Amount: "100.0000000"}}, nil)

	require.NoError(t, ta.run(context.Background(), "alice", VerbBalance, nil))
	assert.Contains(t, ta.out.String(), "100.0000000 XLM")
}

func TestEncodeRejectsWatchWallet(t *testing.T) {
	ta := newTestApp(t, nil, watchRecord(t, "watch"))

	err := ta.run(context.Background(), "watch", VerbEncode, []string{filepath.Join(t.TempDir(), "key")})
	assert.ErrorIs(t, err, wallet.ErrWatchOnly)

	err = ta.run(context.Background(), "watch", VerbEncode, nil)
	assert.True(t, IsUsage(err))
}

func TestDestination(t *testing.T) {
	bob := newRecord(t, "bob")
	ta := newTestApp(t, nil, bob)

	rec, err := ta.destination("bob")
	require.NoError(t, err)
	assert.Equal(t, bob.Address, rec.Address)

	raw := keypair.MustRandom().Address()
	rec, err = ta.destination(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, rec.Address)
	assert.True(t, rec.WatchOnly())

	_, err = ta.destination("carol")
	assert.ErrorIs(t, err, wallet.ErrNotFound)
}
