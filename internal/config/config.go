// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package config selects the network environment and the files scli
// reads and writes for it.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

const (
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"
)

// Config contains all configuration parameters for a single run.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	Live         bool   `envconfig:"LIVE" default:"false"`
	Dir          string `envconfig:"SCLI_CONFIG_DIR" default:"./config"`
	HorizonURL   string `envconfig:"SCLI_HORIZON_URL"`
	LogLevel     string `envconfig:"SCLI_LOG_LEVEL" default:"info"`
	OTLPEndpoint string `envconfig:"SCLI_OTLP_ENDPOINT"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return cfg, nil
}

// Network returns the network name understood by rpc.NewClient.
func (c *Config) Network() string {
	if c.Live {
		return NetworkMainnet
	}
	return NetworkTestnet
}

// WalletFile returns the path of the wallet store for the selected network.
func (c *Config) WalletFile() string {
	return c.file("wallets", ".json")
}

// AssetFile returns the path of the asset registry for the selected network.
func (c *Config) AssetFile() string {
	return c.file("assets", ".json")
}

// JournalFile returns the path of the submitted transaction journal.
func (c *Config) JournalFile() string {
	return c.file("journal", ".db")
}

func (c *Config) file(base, ext string) string {
	if c.Live {
		base += "_live"
	}
	return filepath.Join(c.Dir, base+ext)
}
