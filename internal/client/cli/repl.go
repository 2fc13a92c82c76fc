package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	OAuth(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Products(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Cart(ctx context.Context) error
	Clear(ctx context.Context) error
	Checkout(ctx context.Context) error
	Orders(ctx context.Context, args []string) error
	Pay(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
}

const (
	helpGuest = "Available commands: register, login, oauth <provider>, products [page], " +
		"add <id> [qty], update <id> <qty>, remove <id>, cart, clear, exit"
	helpUser = "Available commands: products [page], add <id> [qty], update <id> <qty>, " +
		"remove <id>, cart, clear, checkout, orders [offset], show <order>, pay <order>, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The first token is the command, the rest are its arguments. The cart
// commands work signed out; checkout, orders and payment need a session.
// Errors returned by handlers are printed and the loop carries on. It exits
// on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("shop %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "oauth":
			cmdErr = a.OAuth(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "p", "products":
			cmdErr = a.Products(ctx, args)

		case "add":
			cmdErr = a.Add(ctx, args)

		case "update":
			cmdErr = a.Update(ctx, args)

		case "remove", "rm":
			cmdErr = a.Remove(ctx, args)

		case "cart":
			cmdErr = a.Cart(ctx)

		case "clear":
			cmdErr = a.Clear(ctx)

		case "checkout":
			cmdErr = a.Checkout(ctx)

		case "orders":
			cmdErr = a.Orders(ctx, args)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "pay":
			cmdErr = a.Pay(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
