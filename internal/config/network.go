package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
)

var (
	ErrInvalidNetwork         = errors.New("unknown network")
	ErrConfigLoad             = errors.New("failed to load config")
	ErrRPCURLNotSet           = errors.New("rpc url not set in config")
	ErrTOMLParse              = errors.New("failed to parse toml")
	ErrHomeDirNotFound        = errors.New("failed to find home directory")
	ErrHorizonURLNotAvailable = errors.New("cannot find horizon url")
)

// RPCURLForNetwork maps a network name to its Soroban RPC endpoint. Well-known
// names resolve from a fixed table; any other name is treated as a network
// imported into the local stellar CLI configuration.
func RPCURLForNetwork(network string) (string, error) {
	switch network {
	case "mainnet":
		return "https://mainnet.sorobanrpc.com", nil
	case "testnet":
		return "https://soroban-testnet.stellar.org", nil
	case "futurenet":
		return "https://rpc-futurenet.stellar.org", nil
	case "local", "standalone":
		return "http://localhost:8000/soroban/rpc", nil
	}
	return rpcURLFromConfigDir(network)
}

// HorizonURLForNetwork maps a network name to its Horizon endpoint. Local
// networks have no inferable Horizon.
func HorizonURLForNetwork(network string) (string, error) {
	switch network {
	case "mainnet":
		return "https://horizon.stellar.org/", nil
	case "testnet":
		return "https://horizon-testnet.stellar.org/", nil
	case "futurenet":
		return "https://horizon-futurenet.stellar.org/", nil
	case "local", "standalone":
		return "", ErrHorizonURLNotAvailable
	}
	return "", ErrInvalidNetwork
}

// rpcURLFromConfigDir resolves an imported network from the stellar CLI config
// tree under $XDG_CONFIG_HOME (or ~/.config). Definitions under stellar/ win
// over legacy soroban/ ones; the CLI writes <name>.toml but a bare <name> file
// is accepted too.
func rpcURLFromConfigDir(network string) (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHomeDirNotFound, err)
		}
		dir = filepath.Join(home, ".config")
	}
	candidates := []string{
		filepath.Join(dir, "stellar", "network", network+".toml"),
		filepath.Join(dir, "stellar", "network", network),
		filepath.Join(dir, "soroban", "network", network+".toml"),
		filepath.Join(dir, "soroban", "network", network),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return rpcURLFromTOML(path)
	}
	return "", fmt.Errorf("%w: network %q not imported", ErrConfigLoad, network)
}

func rpcURLFromTOML(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	tree, err := toml.LoadBytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTOMLParse, err)
	}
	u, ok := tree.Get("rpc_url").(string)
	if !ok || u == "" {
		return "", ErrRPCURLNotSet
	}
	return u, nil
}

// EnsureTrailingSlash appends "/" when missing so client path concatenation
// stays uniform.
func EnsureTrailingSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
