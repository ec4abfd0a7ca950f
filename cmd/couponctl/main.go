package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/madefire/madefire-go/internal/app"
	"github.com/madefire/madefire-go/internal/config"
	"github.com/madefire/madefire-go/internal/logger"
	"github.com/madefire/madefire-go/pkg/api"
	"github.com/madefire/madefire-go/pkg/coupon"
)

const usage = `usage:
  couponctl campaign <slug>
  couponctl redeem <slug> [-code C] [-name N] [-email E] [-password P]
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var reqErr *api.RequestError
		switch {
		case errors.As(err, &reqErr):
			fmt.Fprintf(os.Stderr, "request failed: %s\n", reqErr.Error())
		case errors.Is(err, errUsage):
			fmt.Fprint(os.Stderr, usage)
		default:
			fmt.Fprintf(os.Stderr, "couponctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("couponctl starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.ErrorObj("runner close failed", "error", err.Error())
		}
	}()

	switch cmd.name {
	case "campaign":
		return runner.Campaign(ctx, cmd.slug, stdout)
	default:
		return runner.Redeem(ctx, cmd.slug, cmd.redemption, stdout)
	}
}

type command struct {
	name       string
	slug       string
	redemption coupon.RedemptionRequest
}

// parseCommand validates the subcommand and its arguments before any
// configuration or network work happens.
func parseCommand(args []string) (command, error) {
	switch args[0] {
	case "campaign":
		fs := flag.NewFlagSet("campaign", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 1 || fs.Arg(0) == "" {
			return command{}, errUsage
		}
		return command{name: "campaign", slug: fs.Arg(0)}, nil
	case "redeem":
		if len(args) < 2 || args[1] == "" || args[1][0] == '-' {
			return command{}, errUsage
		}
		slug := args[1]

		fs := flag.NewFlagSet("redeem", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		code := fs.String("code", "", "coupon code")
		name := fs.String("name", "", "redeemer name")
		email := fs.String("email", "", "redeemer email")
		password := fs.String("password", "", "account password, hashed before sending")
		if err := fs.Parse(args[2:]); err != nil || fs.NArg() != 0 {
			return command{}, errUsage
		}

		var req coupon.RedemptionRequest
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "code":
				req.Code = coupon.String(*code)
			case "name":
				req.Name = coupon.String(*name)
			case "email":
				req.Email = coupon.String(*email)
			case "password":
				req.Password = coupon.String(*password)
			}
		})
		return command{name: "redeem", slug: slug, redemption: req}, nil
	default:
		return command{}, errUsage
	}
}
