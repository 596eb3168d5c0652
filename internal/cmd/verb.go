package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Exit codes reported by main for errors returned from Execute.
const (
	UsageExitCode     = 2
	InterruptExitCode = 130
)

// Verb is a wallet-specific operation.
type Verb int

const (
	VerbCreate Verb = iota + 1
	VerbImport
	VerbBalance
	VerbSend
	VerbInfo
	VerbTx
	VerbTrust
	VerbIssue
	VerbOffer
	VerbOfferDel
	VerbPathXLM
	VerbClearOffers
	VerbDomain
	VerbEncode
	VerbDecode
	VerbTest
)

type verbSpec struct {
	name  string
	verb  Verb
	usage string
}

// verbTable is ordered for help output. "pay" is an alias of "send".
var verbTable = []verbSpec{
	{"create", VerbCreate, ""},
	{"import", VerbImport, "<seed-or-address>"},
	{"balance", VerbBalance, ""},
	{"send", VerbSend, "<destination> <amount> [asset] [memo]"},
	{"pay", VerbSend, "<destination> <amount> [asset] [memo]"},
	{"info", VerbInfo, ""},
	{"tx", VerbTx, "[all]"},
	{"trust", VerbTrust, "<asset> [limit]"},
	{"issue", VerbIssue, "[amount] [asset]"},
	{"offer", VerbOffer, "<selling> <buying> <price> <amount>"},
	{"offerdel", VerbOfferDel, "<offer-id>"},
	{"pathxlm", VerbPathXLM, "<destination> <amount>"},
	{"clearOffers", VerbClearOffers, ""},
	{"domain", VerbDomain, "<home-domain>"},
	{"encode", VerbEncode, "<file> [password]"},
	{"decode", VerbDecode, "<file> [password]"},
	{"test", VerbTest, ""},
}

// ParseVerb maps an operation name to its Verb.
func ParseVerb(s string) (Verb, error) {
	for _, v := range verbTable {
		if v.name == s {
			return v.verb, nil
		}
	}
	return 0, usagef("unknown operation: %s (run 'scli help')", s)
}

func (v Verb) String() string {
	for _, spec := range verbTable {
		if spec.verb == v {
			return spec.name
		}
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}

func (v Verb) usage() string {
	for _, spec := range verbTable {
		if spec.verb == v {
			return strings.TrimSpace("<wallet> " + spec.name + " " + spec.usage)
		}
	}
	return ""
}

// UsageError reports a malformed command line.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

func usagef(format string, a ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, a...)}
}

// IsUsage reports whether err is caused by a malformed command line.
func IsUsage(err error) bool {
	var u *UsageError
	return errors.As(err, &u)
}

// IsInterrupted reports whether err comes from the run being cancelled
// by a signal.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// need checks that args holds at least n positional arguments for v.
func need(v Verb, args []string, n int) error {
	if len(args) < n {
		return usagef("missing arguments, usage: %s", v.usage())
	}
	return nil
}

// arg returns args[i], or def when it is absent or empty.
func arg(args []string, i int, def string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return def
}
