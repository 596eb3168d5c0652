// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package wallet persists named Stellar keypairs in a single JSON file.
//
// The file is read whole at Open and rewritten whole by Save; records are
// never partially updated on disk.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// GroupAll selects every wallet in the store.
const GroupAll = "all"

var (
	// ErrNotFound indicates no wallet is stored under the requested name
	ErrNotFound = errors.New("wallet not found")
	// ErrAlreadyExists indicates a create or import would overwrite a wallet
	ErrAlreadyExists = errors.New("wallet already exists")
	// ErrInvalidKey indicates the input is neither a secret seed nor an address
	ErrInvalidKey = errors.New("must provide a valid address or seed for import")
	// ErrWatchOnly indicates a wallet without a seed was asked to sign
	ErrWatchOnly = errors.New("wallet has no seed")
)

// Store maps wallet names to records.
type Store struct {
	path    string
	wallets map[string]Record
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, wallets: map[string]Record{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read wallet file: %w", err)
	}

	if err := json.Unmarshal(data, &s.wallets); err != nil {
		return nil, fmt.Errorf("failed to parse wallet file %s: %w", path, err)
	}
	if s.wallets == nil {
		s.wallets = map[string]Record{}
	}
	for name, rec := range s.wallets {
		rec.Name = name
		s.wallets[name] = rec
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of stored wallets.
func (s *Store) Len() int {
	return len(s.wallets)
}

// Get returns the record stored under name.
func (s *Store) Get(name string) (Record, error) {
	rec, ok := s.wallets[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, nil
}

// Add stores rec under name. Existing records are never overwritten.
func (s *Store) Add(name string, rec Record) error {
	if _, ok := s.wallets[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	rec.Name = name
	s.wallets[name] = rec
	return nil
}

// Names returns every wallet name in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.wallets))
	for name := range s.wallets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group resolves a selector to records: GroupAll returns every wallet,
// anything else is a single wallet name.
func (s *Store) Group(selector string) ([]Record, error) {
	if selector != GroupAll {
		rec, err := s.Get(selector)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	}

	names := s.Names()
	out := make([]Record, 0, len(names))
	for _, name := range names {
		out = append(out, s.wallets[name])
	}
	return out, nil
}

// Save rewrites the whole file. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.wallets, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallets: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create wallet directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".wallets-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp wallet file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write wallet file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod wallet file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write wallet file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace wallet file: %w", err)
	}
	return nil
}
