package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// DefaultSnapURL is the sandbox checkout page; the session token is
// appended as the last path segment.
const DefaultSnapURL = "https://app.sandbox.midtrans.com/snap/v4/redirection"

// TerminalWidget shows the checkout link and asks the shopper what the
// payment page reported. An empty answer counts as closing the page.
type TerminalWidget struct {
	baseURL string
	in      *bufio.Reader
	out     io.Writer
	mu      sync.Mutex
}

func NewTerminalWidget(baseURL string, in io.Reader, out io.Writer) *TerminalWidget {
	if baseURL == "" {
		baseURL = DefaultSnapURL
	}
	return &TerminalWidget{
		baseURL: strings.TrimRight(baseURL, "/"),
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// CheckoutURL is the page a session token opens.
func (w *TerminalWidget) CheckoutURL(token string) string {
	return w.baseURL + "/" + token
}

func (w *TerminalWidget) Open(ctx context.Context, token string, cb Callbacks) error {
	if token == "" {
		return fmt.Errorf("%w: empty session token", ErrUnavailable)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintf(w.out, "Complete the payment at:\n  %s\n", w.CheckoutURL(token))
	fmt.Fprint(w.out, "Result reported by the payment page [success/pending/error, empty to close]: ")

	line, err := w.readLine(ctx)
	if err != nil && line == "" {
		if err == io.EOF {
			cb.closed()
			return nil
		}
		return err
	}

	status, message, _ := strings.Cut(strings.TrimSpace(line), " ")
	r := Result{Status: strings.ToLower(status), Message: strings.TrimSpace(message)}
	switch r.Status {
	case "success", "settlement", "capture":
		cb.success(r)
	case "pending":
		cb.pending(r)
	case "error", "failed", "deny":
		cb.fail(r)
	default:
		cb.closed()
	}
	return nil
}

// readLine reads synchronously: the reader is shared with the REPL, so a
// line must never be consumed after the caller has given up on it.
func (w *TerminalWidget) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return w.in.ReadString('\n')
}
