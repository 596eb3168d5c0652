// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package envelope decodes base64 XDR transaction envelopes for display.
package envelope

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stellar/go/xdr"
)

// Decode parses a base64 encoded transaction envelope.
func Decode(b64 string) (xdr.TransactionEnvelope, error) {
	var env xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(strings.TrimSpace(b64), &env); err != nil {
		return xdr.TransactionEnvelope{}, fmt.Errorf("failed to decode transaction envelope: %w", err)
	}
	return env, nil
}

// OperationTypes lists the operation types in env, in order.
func OperationTypes(env xdr.TransactionEnvelope) []string {
	ops := env.Operations()
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, strings.TrimPrefix(op.Body.Type.String(), "OperationType"))
	}
	return out
}

// Print writes a one-line summary of env followed by its full structure
// as indented JSON.
func Print(w io.Writer, env xdr.TransactionEnvelope) error {
	source := env.SourceAccount().ToAccountId()
	fmt.Fprintf(w, "Type: %s\n", strings.TrimPrefix(env.Type.String(), "EnvelopeType"))
	fmt.Fprintf(w, "Source: %s\n", source.Address())
	fmt.Fprintf(w, "Sequence: %d\n", env.SeqNum())
	fmt.Fprintf(w, "Operations: %s\n", strings.Join(OperationTypes(env), ", "))
	fmt.Fprintf(w, "Signatures: %d\n\n", len(env.Signatures()))

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render envelope: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
