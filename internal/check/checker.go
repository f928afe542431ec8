// Package check wires admin resolution and account classification into one
// run over a single target address.
package check

import (
	"context"
	"net/http"
	"time"

	"github.com/sorolens/admintype/internal/classify"
	"github.com/sorolens/admintype/internal/resolve"
	"github.com/sorolens/admintype/internal/soroban"
	"github.com/sorolens/admintype/internal/storagekey"
	"github.com/sorolens/admintype/pkg/horizon"
	"github.com/stellar/go/xdr"
)

// DefaultKey is the storage key contracts conventionally keep their admin
// under.
const DefaultKey = "admin"

// Options configure a run of the checker.
type Options struct {
	RPCURL     string
	HorizonURL string
	Key        string        // admin storage key, DefaultKey when empty
	Timeout    time.Duration // HTTP client timeout
}

// Checker resolves who administers a target address and classifies the
// controller.
type Checker struct {
	target xdr.ScAddress
	keys   *storagekey.Set
	prov   soroban.Provider
	idx    horizon.Index
}

// New builds a Checker for the target address, wiring HTTP clients for the
// configured endpoints.
func New(target string, opts Options) (*Checker, error) {
	c, err := newChecker(target, opts.Key)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	prov, err := soroban.NewClient(opts.RPCURL, hc)
	if err != nil {
		return nil, err
	}
	c.prov = prov
	c.idx = horizon.New(opts.HorizonURL, hc)
	return c, nil
}

// NewWithClients injects concrete provider and index implementations. Prefer
// this in tests and custom wiring.
func NewWithClients(target string, opts Options, prov soroban.Provider, idx horizon.Index) (*Checker, error) {
	c, err := newChecker(target, opts.Key)
	if err != nil {
		return nil, err
	}
	c.prov = prov
	c.idx = idx
	return c, nil
}

func newChecker(target, key string) (*Checker, error) {
	addr, err := resolve.ParseAddress(target)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = DefaultKey
	}
	keys, err := storagekey.Variants(key)
	if err != nil {
		return nil, err
	}
	return &Checker{target: addr, keys: keys}, nil
}

// Run resolves the admin behind the target and classifies it. Contract
// control is terminal; account control is classified from signer state and
// transaction cadence.
func (c *Checker) Run(ctx context.Context) (classify.AccountType, error) {
	val, err := resolve.New(c.prov, c.target, c.keys).Admin(ctx)
	if err != nil {
		return classify.AccountType{}, err
	}
	target, err := resolve.DecodeControlTarget(val)
	if err != nil {
		return classify.AccountType{}, err
	}
	if target.Kind == resolve.TargetContract {
		return classify.Contract(), nil
	}
	return classify.New(c.idx).Classify(ctx, target.Account)
}
