package rpc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellar/go/clients/horizonclient"
)

// Error is a failure reported by, or on the way to, the Horizon server.
// Status and the result codes are zero when the request never got a
// problem response (network unreachable, signing failed, ...).
type Error struct {
	Op              string
	Status          int
	Title           string
	Detail          string
	TransactionCode string
	OperationCodes  []string
	Err             error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" failed")
	if e.Title != "" {
		fmt.Fprintf(&b, ": %s", e.Title)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	if e.TransactionCode != "" {
		fmt.Fprintf(&b, " [tx: %s", e.TransactionCode)
		if len(e.OperationCodes) > 0 {
			fmt.Fprintf(&b, ", ops: %s", strings.Join(e.OperationCodes, ","))
		}
		b.WriteString("]")
	}
	if e.Title == "" && e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapErr converts err into an *Error for op. Horizon problem responses
// contribute their status, title, detail and transaction result codes.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	e := &Error{Op: op, Err: err}
	var herr *horizonclient.Error
	if errors.As(err, &herr) {
		e.Status = herr.Problem.Status
		e.Title = herr.Problem.Title
		e.Detail = herr.Problem.Detail
		if codes, cerr := herr.ResultCodes(); cerr == nil && codes != nil {
			e.TransactionCode = codes.TransactionCode
			e.OperationCodes = codes.OperationCodes
		}
	}
	return e
}
