// Package resolve locates the admin value behind a ledger address. Contracts
// keep their admin under instance or persistent storage; accounts are their
// own admin.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sorolens/admintype/internal/logging"
	"github.com/sorolens/admintype/internal/soroban"
	"github.com/sorolens/admintype/internal/storagekey"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

var (
	ErrMalformedAddress  = errors.New("malformed address")
	ErrNotAContract      = errors.New("target address is not a contract")
	ErrAdminNotFound     = errors.New("admin not found")
	ErrMultipleAdmins    = errors.New("multiple potential admin addresses")
	ErrWrongStorageType  = errors.New("wrong storage type")
	ErrInstanceStorage   = errors.New("failed to fetch instance storage")
	ErrPersistentStorage = errors.New("failed to fetch persistent storage")
)

// Resolver finds the admin value a contract stores under any of the
// candidate keys. Instance storage is checked first; persistent entries are
// the fallback, looked up in one batched call.
type Resolver struct {
	prov   soroban.Provider
	target xdr.ScAddress
	keys   *storagekey.Set
}

func New(prov soroban.Provider, target xdr.ScAddress, keys *storagekey.Set) *Resolver {
	return &Resolver{prov: prov, target: target, keys: keys}
}

// Admin returns the stored admin value of the target. Account targets are
// their own admin and resolve without touching the network. Transport
// failures are terminal; no lookup is retried.
func (r *Resolver) Admin(ctx context.Context) (val xdr.ScVal, err error) {
	if r.target.Type == xdr.ScAddressTypeScAddressTypeAccount {
		return xdr.NewScVal(xdr.ScValTypeScvAddress, r.target)
	}
	if r.target.Type != xdr.ScAddressTypeScAddressTypeContract {
		return xdr.ScVal{}, ErrNotAContract
	}
	start := time.Now()
	source := "instance"
	logger := logging.Logger()
	defer func() {
		if logger == nil {
			return
		}
		fields := []any{
			"component", "resolve.admin",
			"contract", r.contractLabel(),
			"source", source,
			"key_variants", r.keys.Len(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			logger.Warn("admin_resolution_failed", append(fields, "error", err.Error())...)
			return
		}
		logger.Info("admin_resolved", fields...)
	}()

	entries, err := r.prov.InstanceStorage(ctx, r.target)
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("%w: %v", ErrInstanceStorage, err)
	}
	for _, entry := range entries {
		if r.keys.Contains(entry.Key) {
			return entry.Val, nil
		}
	}
	source = "persistent"
	return r.persistentLookup(ctx)
}

// persistentLookup probes every candidate key as a persistent contract-data
// entry. More than one live entry means the admin is ambiguous and resolution
// must not guess.
func (r *Resolver) persistentLookup(ctx context.Context) (xdr.ScVal, error) {
	ledgerKeys := make([]xdr.LedgerKey, 0, r.keys.Len())
	for _, k := range r.keys.Values() {
		ledgerKeys = append(ledgerKeys, xdr.LedgerKey{
			Type: xdr.LedgerEntryTypeContractData,
			ContractData: &xdr.LedgerKeyContractData{
				Contract:   r.target,
				Key:        k,
				Durability: xdr.ContractDataDurabilityPersistent,
			},
		})
	}
	entries, err := r.prov.LedgerEntries(ctx, ledgerKeys)
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("%w: %v", ErrPersistentStorage, err)
	}
	if len(entries) == 0 {
		return xdr.ScVal{}, ErrAdminNotFound
	}
	if len(entries) > 1 {
		return xdr.ScVal{}, fmt.Errorf("%w: %d live entries", ErrMultipleAdmins, len(entries))
	}
	data, err := soroban.DecodeLedgerEntryData(entries[0].XDR)
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("%w: %v", ErrPersistentStorage, err)
	}
	contractData, ok := data.GetContractData()
	if !ok {
		return xdr.ScVal{}, ErrAdminNotFound
	}
	return contractData.Val, nil
}

func (r *Resolver) contractLabel() string {
	id, ok := r.target.GetContractId()
	if !ok {
		return ""
	}
	lbl, err := strkey.Encode(strkey.VersionByteContract, id[:])
	if err != nil {
		return ""
	}
	return lbl
}
