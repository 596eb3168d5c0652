// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package assets resolves asset symbols to ledger assets.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/dotandev/scli/internal/logger"
)

// NativeCode is the display code of the network's native asset.
const NativeCode = "XLM"

// ErrUnknownAsset indicates the symbol is not native and not registered
var ErrUnknownAsset = errors.New("asset does not exist")

// Descriptor is a registered credit asset.
type Descriptor struct {
	Code   string `json:"code"`
	Issuer string `json:"issuer"`
}

// Registry is the immutable symbol table for one run.
type Registry struct {
	assets map[string]Descriptor
}

// Load reads the registry file at path. A missing or unreadable file
// leaves only the native asset available.
func Load(path string) *Registry {
	r := &Registry{assets: map[string]Descriptor{}}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Logger.Warn("Custom asset file not found", "path", path)
		return r
	}

	var raw map[string]Descriptor
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Logger.Warn("Custom asset file is invalid, ignoring it", "path", path, "error", err)
		return r
	}
	return New(raw)
}

// New builds a registry from descriptors keyed by symbol. Entries whose
// issuer is not a valid account address are dropped with a warning.
func New(descriptors map[string]Descriptor) *Registry {
	r := &Registry{assets: make(map[string]Descriptor, len(descriptors))}
	for sym, d := range descriptors {
		if _, err := keypair.ParseAddress(d.Issuer); err != nil {
			logger.Logger.Warn("Ignoring asset with invalid issuer", "asset", sym, "issuer", d.Issuer, "error", err)
			continue
		}
		r.assets[strings.ToUpper(sym)] = d
	}
	return r
}

// Resolve maps a symbol to a ledger asset. Empty, "xlm" and "native"
// resolve to the native asset in any case.
func (r *Registry) Resolve(symbol string) (txnbuild.Asset, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" || sym == NativeCode || sym == "NATIVE" {
		return txnbuild.NativeAsset{}, nil
	}

	d, ok := r.assets[sym]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, sym)
	}
	return txnbuild.CreditAsset{Code: d.Code, Issuer: d.Issuer}, nil
}

// Codes returns the registered symbols in sorted order.
func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.assets))
	for sym := range r.assets {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Code returns the display code of a.
func Code(a txnbuild.Asset) string {
	if a == nil || a.IsNative() {
		return NativeCode
	}
	return a.GetCode()
}
