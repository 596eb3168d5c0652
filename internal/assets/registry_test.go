package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuer = keypair.MustRandom().Address()

func TestResolveNative(t *testing.T) {
	r := New(nil)
	for _, sym := range []string{"", "xlm", "XLM", "Xlm", "native", " NATIVE "} {
		a, err := r.Resolve(sym)
		require.NoError(t, err, "symbol %q", sym)
		assert.True(t, a.IsNative(), "symbol %q", sym)
		assert.Equal(t, NativeCode, Code(a))
	}
}

func TestResolveRegistered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"usdc":{"code":"USDC","issuer":"`+issuer+`"}}`), 0o600))

	r := Load(path)
	assert.Equal(t, []string{"USDC"}, r.Codes())

	for _, sym := range []string{"usdc", "USDC", "UsDc"} {
		a, err := r.Resolve(sym)
		require.NoError(t, err)
		assert.Equal(t, txnbuild.CreditAsset{Code: "USDC", Issuer: issuer}, a)
		assert.Equal(t, "USDC", Code(a))
	}
}

func TestResolveUnknown(t *testing.T) {
	r := New(map[string]Descriptor{"USDC": {Code: "USDC", Issuer: issuer}})

	_, err := r.Resolve("UNKNOWNCODE")
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestLoadMissingFileDegrades(t *testing.T) {
	r := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Empty(t, r.Codes())

	a, err := r.Resolve("xlm")
	require.NoError(t, err)
	assert.True(t, a.IsNative())

	_, err = r.Resolve("USDC")
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestLoadInvalidFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1,2`), 0o600))

	assert.Empty(t, Load(path).Codes())
}

func TestLoadDropsInvalidIssuer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.json")
	body := `{
		"usdc": {"code": "USDC", "issuer": "` + issuer + `"},
		"eurt": {"code": "EURT", "issuer": "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34KPPVPQS"},
		"btc":  {"code": "BTC"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	r := Load(path)
	assert.Equal(t, []string{"USDC"}, r.Codes())

	_, err := r.Resolve("EURT")
	assert.ErrorIs(t, err, ErrUnknownAsset)
	_, err = r.Resolve("BTC")
	assert.ErrorIs(t, err, ErrUnknownAsset)
}
