// Command noteadmin is the operational front door to the identity core:
// bootstrap users, grant roles and drive the password-reset token flow
// without the application boundary layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"notehub.org/internal/auth"
	"notehub.org/internal/config"
	"notehub.org/internal/obs"
	"notehub.org/internal/store/pg"
)

const usage = `usage: noteadmin <command> [flags]

commands:
  create-user   -username U -email E -password P [-name N] [-role R]
  grant-role    -username U -role R
  issue-reset   -email E
  verify-reset  -token T
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init", zap.Error(err))
	}
	defer app.store.Close()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Fatal(os.Args[1], zap.Error(err))
	}
}

type app struct {
	store *pg.Store
	svc   *auth.Service
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("missing %s", config.EnvPostgresDSN)
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("missing %s", config.EnvAuthSecret)
	}

	st, err := pg.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	authn := auth.NewAuthenticator(cfg.BcryptCost, logger)
	tokens, err := auth.NewTokenService([]byte(cfg.AuthSecret))
	if err != nil {
		st.Close()
		return nil, err
	}
	sessions, err := auth.NewSessionService([]byte(cfg.AuthSecret), cfg.SessionTTL)
	if err != nil {
		st.Close()
		return nil, err
	}
	svc, err := auth.NewService(st, authn, tokens, sessions,
		auth.WithLogger(logger),
		auth.WithResetMaxAge(cfg.ResetMaxAge),
	)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &app{store: st, svc: svc}, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create-user":
		return a.createUser(ctx, args)
	case "grant-role":
		return a.grantRole(ctx, args)
	case "issue-reset":
		return a.issueReset(ctx, args)
	case "verify-reset":
		return a.verifyReset(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "unique username")
	email := fs.String("email", "", "unique email")
	name := fs.String("name", "", "display name")
	password := fs.String("password", "", "initial password")
	role := fs.String("role", "", "extra role to grant (optional)")
	_ = fs.Parse(args)

	u, err := a.svc.Register(ctx, *username, *email, *name, *password)
	if err != nil {
		return err
	}
	if *role != "" {
		if err := a.svc.Gate().GrantRole(ctx, u.ID, *role); err != nil {
			return err
		}
	}
	fmt.Println(u.ID)
	return nil
}

func (a *app) grantRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("grant-role", flag.ExitOnError)
	username := fs.String("username", "", "existing username")
	role := fs.String("role", "", "role name")
	_ = fs.Parse(args)

	u, err := a.store.Users().GetByUsername(ctx, *username)
	if err != nil {
		return err
	}
	return a.svc.Gate().GrantRole(ctx, u.ID, *role)
}

func (a *app) issueReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("issue-reset", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	_ = fs.Parse(args)

	token, err := a.svc.RequestPasswordReset(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func (a *app) verifyReset(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("verify-reset", flag.ExitOnError)
	token := fs.String("token", "", "reset token")
	_ = fs.Parse(args)

	userID, err := a.svc.VerifyResetToken(*token)
	if err != nil {
		return err
	}
	fmt.Println(userID)
	return nil
}
