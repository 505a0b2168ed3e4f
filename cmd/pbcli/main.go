package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"investecpb/internal/config"
	"investecpb/internal/logging"
	"investecpb/internal/telemetry"
	"investecpb/pkg/investec"
)

const usage = `pbcli - Investec Programmable Banking command-line client

Usage:
  pbcli <command> [options]

Commands:
  token           Acquire an access token and show its type, scope and expiry
  accounts        List accounts
  balance         Show the balance of an account
  transactions    List the transactions of an account
  beneficiaries   List beneficiaries
  transfer        Transfer between your own accounts
  pay             Pay a beneficiary
  snapshot        Show every account with its balance
  fake-server     Serve an in-memory fake of the API for local development

Configuration is read from the environment (and a .env file in the working
directory): INVESTEC_CLIENT_ID, INVESTEC_CLIENT_SECRET and INVESTEC_API_KEY are
required; INVESTEC_HOST, INVESTEC_TIMEOUT, LOG_LEVEL, LOG_FORMAT, OTEL_ENABLED,
OTEL_SERVICE_NAME, OTEL_EXPORTER_ENDPOINT and SNAPSHOT_WORKERS are optional.

Examples:
  # List transactions for January
  pbcli transactions --account=3353431574710166878182963 --from=2024-01-01 --to=2024-01-31

  # Move R10.50 to savings
  pbcli transfer --account=3353431574710166878182963 --to-account=3353431574710166878182964 \
    --amount=10.50 --my-ref=savings --their-ref=savings

  # Snapshot with 8 concurrent balance lookups
  pbcli snapshot --workers=8

  # Point the CLI at a local fake
  pbcli fake-server --addr=:8089 &
  INVESTEC_HOST=http://localhost:8089 pbcli accounts
`

var errUsage = errors.New("usage error")

type command func(ctx context.Context, env *env, args []string) error

var commands = map[string]command{
	"token":         runToken,
	"accounts":      runAccounts,
	"balance":       runBalance,
	"transactions":  runTransactions,
	"beneficiaries": runBeneficiaries,
	"transfer":      runTransfer,
	"pay":           runPay,
	"snapshot":      runSnapshot,
	"fake-server":   runFakeServer,
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		if err != errUsage {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env carries what every command needs. It is built after flags are parsed.
type env struct {
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger
	client *investec.Client
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	name := args[0]
	switch name {
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	return cmd(ctx, &env{stdout: stdout, stderr: stderr}, args[1:])
}

// flagSet returns a FlagSet that reports errors instead of exiting
func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func (e *env) parse(fs *flag.FlagSet, args []string) error {
	// the flag package has already reported the problem
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// required fails with the flag's usage when any of the named flags is empty
func (e *env) required(fs *flag.FlagSet, names ...string) error {
	for _, name := range names {
		if f := fs.Lookup(name); f != nil && f.Value.String() == "" {
			fmt.Fprintf(e.stderr, "Error: --%s is required\n", name)
			fs.Usage()
			return errUsage
		}
	}
	return nil
}

// setup loads configuration, builds the logger, starts telemetry and creates
// the API client. The returned func flushes telemetry.
func (e *env) setup(ctx context.Context) (func(), error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e.cfg = cfg
	e.logger = logging.New(e.stderr, cfg.Log)

	cleanup := func() {}
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		}, e.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		cleanup = func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				e.logger.Error("telemetry shutdown failed", "error", err)
			}
		}
	}

	e.client = investec.NewClient(
		cfg.Investec.ClientID,
		cfg.Investec.ClientSecret,
		cfg.Investec.APIKey,
		investec.WithHost(cfg.Investec.Host),
		investec.WithTimeout(cfg.Investec.Timeout),
		investec.WithLogger(e.logger),
	)
	return cleanup, nil
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
