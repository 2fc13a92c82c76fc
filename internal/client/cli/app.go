package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/config"
	"github.com/dmitrijs2005/gophstore/internal/client/gateway"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/gophstore/internal/client/services"
	"github.com/dmitrijs2005/gophstore/internal/client/store"
	"github.com/dmitrijs2005/gophstore/internal/filex"
	"github.com/dmitrijs2005/gophstore/internal/logging"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	auth     services.AuthService
	catalog  services.CatalogService
	orders   services.OrderService
	payments services.PaymentService
	cart     *store.CartStore
	reader   *bufio.Reader
	out      io.Writer
	db       *sql.DB
}

// NewApp opens the local database under c.DataDir and wires the stores,
// the HTTP client and the services on top of it. Standard input is shared
// between the REPL, the prompts and the payment widget.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsurePrivateDir(c.DataDir); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath())
	if err != nil {
		log.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	a, err := newApp(ctx, c, log, db, bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, db *sql.DB, in *bufio.Reader, out io.Writer) (*App, error) {
	repos := client.NewRepositories(db)

	var jar cookies.Jar = repos.Cookies
	if c.StoragePassphrase != "" {
		sealed, err := cookies.NewSealedJar(ctx, repos.Cookies, repos.Metadata, []byte(c.StoragePassphrase))
		if err != nil {
			return nil, err
		}
		jar = sealed
	}

	persist := store.NewMetadataPersister(repos.Metadata)
	authStore, err := store.NewAuthStore(ctx, jar, persist, c.SecureCookies)
	if err != nil {
		return nil, fmt.Errorf("loading auth state: %w", err)
	}
	cart, err := store.NewCartStore(ctx, persist)
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	api, err := client.New(client.Options{
		BaseURL:       c.APIURL,
		Jar:           jar,
		Timeout:       c.RequestTimeout,
		SecureCookies: c.SecureCookies,
		Logger:        log,
		OnAuthExpired: func(ctx context.Context) {
			if err := authStore.Logout(ctx); err != nil {
				log.Warn(ctx, "clearing auth state", "err", err)
			}
			fmt.Fprintln(out, "Your session has expired. Please log in again.")
		},
	})
	if err != nil {
		return nil, err
	}

	orders := services.NewOrderService(api, authStore, cart, log)
	widget := gateway.NewTerminalWidget(c.SnapURL, in, out)

	return &App{
		config:   c,
		log:      log,
		auth:     services.NewAuthService(api, authStore, log),
		catalog:  services.NewCatalogService(api, cart, log),
		orders:   orders,
		payments: services.NewPaymentService(api, orders, authStore, widget, log),
		cart:     cart,
		reader:   in,
		out:      out,
		db:       db,
	}, nil
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	fmt.Fprintln(a.out, "Welcome to GophStore (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn(context.Context) bool {
	return a.auth.State().IsAuthenticated
}

func (a *App) status() string {
	s := "guest"
	if st := a.auth.State(); st.IsAuthenticated && st.User != nil {
		s = st.User.Email
	}
	if n := a.cart.TotalItems(); n > 0 {
		s = fmt.Sprintf("%s, cart %d", s, n)
	}
	return fmt.Sprintf("(%s)", s)
}
