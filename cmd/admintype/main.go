package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sorolens/admintype/internal/check"
	"github.com/sorolens/admintype/internal/classify"
	"github.com/sorolens/admintype/internal/config"
	"github.com/sorolens/admintype/internal/logging"
)

var (
	// version is set via -ldflags "-X main.version=..."
	version = "dev"
	// exit is aliased to os.Exit to allow overriding in tests.
	exit = os.Exit
	// newChecker allows tests to inject a stub runner.
	newChecker func(target string, opts check.Options) (runner, error)
)

type runner interface {
	Run(ctx context.Context) (classify.AccountType, error)
}

func defaultNewChecker(target string, opts check.Options) (runner, error) {
	return check.New(target, opts)
}

func wireDefaults() { newChecker = defaultNewChecker }

func init() { wireDefaults() }

var (
	errMissingNetwork = errors.New("missing network")
	errMissingTarget  = errors.New("contract id or admin is missing")
)

type cliOptions struct {
	contractID string
	admin      string
	rpcURL     string
	network    string
	key        string
	horizonURL string
	timeout    time.Duration
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "admintype",
		Short: "Checks what kind of wallet administers a ledger address",
		Long: `admintype resolves the admin behind a Soroban contract (or classifies an
account directly) and reports who holds control: a contract, a multisig
quorum, a deactivated account, a hot wallet, or MPC custody.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation prints help instead of an error.
			if cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			return run(cmd, opts, cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.contractID, "contract-id", "c", "", "contract address (C...) whose admin to resolve")
	flags.StringVarP(&opts.admin, "admin", "a", "", "admin account (G...) to classify directly")
	flags.StringVarP(&opts.rpcURL, "rpc-url", "r", "", "Soroban RPC endpoint (SOROBAN_RPC_URL)")
	flags.StringVarP(&opts.network, "network", "n", "", "network name: mainnet, testnet, futurenet or local (SOROBAN_NETWORK)")
	flags.StringVarP(&opts.key, "key", "k", check.DefaultKey, "storage key the contract keeps its admin under")
	flags.StringVar(&opts.horizonURL, "horizon", "", "Horizon endpoint (HORIZON_URL)")
	flags.DurationVar(&opts.timeout, "timeout", cfg.Timeout, "overall run timeout")
	cmd.MarkFlagsMutuallyExclusive("contract-id", "admin")
	cmd.MarkFlagsMutuallyExclusive("rpc-url", "network")
	cmd.MarkFlagsMutuallyExclusive("admin", "key")
	return cmd
}

func run(cmd *cobra.Command, opts *cliOptions, cfg config.Config) error {
	network := opts.network
	if network == "" {
		network = cfg.Network
	}
	if opts.rpcURL == "" && cfg.RPCURL == "" && network == "" {
		return errMissingNetwork
	}
	target := opts.contractID
	if target == "" {
		target = opts.admin
	}
	if target == "" {
		return errMissingTarget
	}
	rpcURL, err := resolveRPCURL(opts.rpcURL, cfg, network)
	if err != nil {
		return err
	}
	horizonURL, err := resolveHorizonURL(opts.horizonURL, cfg, network)
	if err != nil {
		return err
	}
	c, err := newChecker(target, check.Options{
		RPCURL:     rpcURL,
		HorizonURL: horizonURL,
		Key:        opts.key,
		Timeout:    opts.timeout,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()
	t, err := c.Run(ctx)
	if err != nil {
		return err
	}
	logging.Logger().Info("classification_complete",
		"component", "cli",
		"target", target,
		"account_type", t.String(),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Account type: %s\n", t)
	return nil
}

// resolveRPCURL picks the Soroban RPC endpoint: explicit flag, then
// environment, then the well-known endpoint for the network.
func resolveRPCURL(flagURL string, cfg config.Config, network string) (string, error) {
	if flagURL != "" {
		return config.EnsureTrailingSlash(flagURL), nil
	}
	if cfg.RPCURL != "" {
		return config.EnsureTrailingSlash(cfg.RPCURL), nil
	}
	u, err := config.RPCURLForNetwork(network)
	if err != nil {
		return "", err
	}
	return config.EnsureTrailingSlash(u), nil
}

// resolveHorizonURL picks the Horizon endpoint the same way. Without a
// network name there is no table to consult, so an endpoint must be given
// explicitly.
func resolveHorizonURL(flagURL string, cfg config.Config, network string) (string, error) {
	if flagURL != "" {
		return config.EnsureTrailingSlash(flagURL), nil
	}
	if cfg.HorizonURL != "" {
		return config.EnsureTrailingSlash(cfg.HorizonURL), nil
	}
	if network == "" {
		return "", config.ErrHorizonURLNotAvailable
	}
	u, err := config.HorizonURLForNetwork(network)
	if err != nil {
		return "", err
	}
	return config.EnsureTrailingSlash(u), nil
}

func main() {
	cfg := config.Load()
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	if err := newRootCmd(cfg).Execute(); err != nil {
		exit(1)
	}
}
