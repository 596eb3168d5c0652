package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dotandev/scli/internal/assets"
	"github.com/dotandev/scli/internal/wallet"
)

// sendState tracks the interactive confirmation of a payment.
type sendState int

const (
	sendPrepared sendState = iota
	sendAwaitingConfirmation
	sendConfirmed
	sendCancelled
)

func (s sendState) String() string {
	switch s {
	case sendPrepared:
		return "prepared"
	case sendAwaitingConfirmation:
		return "awaiting confirmation"
	case sendConfirmed:
		return "confirmed"
	case sendCancelled:
		return "cancelled"
	}
	return "unknown"
}

// send prints a payment summary, asks for confirmation on a.in and pays
// only when the answer is exactly "y". It returns the state it ended in;
// a cancelled send is not an error.
func (a *app) send(ctx context.Context, name string, args []string) (sendState, error) {
	state := sendPrepared
	if err := need(VerbSend, args, 2); err != nil {
		return state, err
	}
	amount := args[1]
	symbol := arg(args, 2, "")

	src, err := a.store.Get(name)
	if err != nil {
		return state, err
	}
	if src.WatchOnly() {
		return state, fmt.Errorf("cannot send from %s: %w", name, wallet.ErrWatchOnly)
	}

	asset, err := a.assets.Resolve(symbol)
	if err != nil {
		return state, err
	}

	dest, err := a.destination(args[0])
	if err != nil {
		return state, err
	}
	memo := arg(args, 3, dest.Memo)

	fmt.Fprintf(a.out, "Name:\n%s\n", dest.Name)
	fmt.Fprintf(a.out, "\nAddress:\n%s\n", dest.Address)
	fmt.Fprintf(a.out, "\nAmount:\n%s %s\n", amount, assets.Code(asset))
	fmt.Fprintf(a.out, "\nMemo:\n%s\n\n", memo)
	if dest.WatchOnly() {
		warnColor.Fprintln(a.out, "(Warning): It appears that you don't own the seed for the destination account")
	}
	fmt.Fprintln(a.out, "Please confirm send (y):")

	state = sendAwaitingConfirmation
	line, err := readLine(ctx, a.in)
	if err != nil {
		return state, err
	}

	if line != "y" {
		fmt.Fprintln(a.out, "Cancelled")
		return sendCancelled, nil
	}

	state = sendConfirmed
	hash, err := a.ledger.SendPayment(ctx, src, dest.Address, amount, memo, asset)
	if err != nil {
		return state, err
	}
	a.record(ctx, name, VerbSend, hash)
	fmt.Fprintln(a.out, hash)
	return state, nil
}

// readLine reads one line from r without its line ending. It gives up
// when ctx is cancelled; otherwise it waits as long as it takes. EOF
// before any input yields an empty line.
func readLine(ctx context.Context, r io.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		ch <- result{strings.TrimRight(line, "\r\n"), err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
