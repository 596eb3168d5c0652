// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"fmt"
	"strings"

	"github.com/stellar/go/keypair"
)

// Record is a locally remembered Stellar identity. A record without a
// seed is a watch wallet: it can receive but never sign.
type Record struct {
	Name    string `json:"-"`
	Address string `json:"address"`
	Seed    string `json:"seed,omitempty"`
	Memo    string `json:"memo,omitempty"`
}

// WatchOnly reports whether the record has no signing seed.
func (r Record) WatchOnly() bool {
	return r.Seed == ""
}

// Keypair returns the signing keypair for the record.
func (r Record) Keypair() (*keypair.Full, error) {
	if r.WatchOnly() {
		return nil, fmt.Errorf("%w: %s", ErrWatchOnly, r.Name)
	}
	kp, err := keypair.ParseFull(r.Seed)
	if err != nil {
		return nil, fmt.Errorf("wallet %s has an invalid seed: %w", r.Name, err)
	}
	return kp, nil
}

// Parse builds a record from either a secret seed or a public address.
// A seed yields a signing record whose address is derived from it; an
// address yields a watch wallet.
func Parse(name, secretOrAddress string) (Record, error) {
	s := strings.TrimSpace(secretOrAddress)
	if kp, err := keypair.ParseFull(s); err == nil {
		return Record{Name: name, Address: kp.Address(), Seed: s}, nil
	}
	if _, err := keypair.ParseAddress(s); err == nil {
		return Record{Name: name, Address: s}, nil
	}
	return Record{}, ErrInvalidKey
}

// IsAddress reports whether s is a valid Stellar account address.
func IsAddress(s string) bool {
	_, err := keypair.ParseAddress(s)
	return err == nil
}
