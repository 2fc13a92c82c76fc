// Package cli provides the interactive GophStore shop client.
//
// It wires configuration, the local SQLite storage, the API client and the
// shop services, then runs a read-eval-print loop over standard input:
// browse products, keep a cart (signed in or not), check out and pay for
// orders through the payment gateway.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
