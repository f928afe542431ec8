package soroban

import (
	"context"

	"github.com/stellar/go/xdr"
)

// Provider defines the minimal RPC surface admin resolution needs. Concrete
// adapters (hosted Soroban RPC, quickstart containers) satisfy this interface.
type Provider interface {
	// InstanceStorage returns the instance storage map of the given contract.
	// A missing contract or a non-instance payload is an error, not an empty map.
	InstanceStorage(ctx context.Context, contract xdr.ScAddress) ([]xdr.ScMapEntry, error)

	// LedgerEntries performs a single batched getLedgerEntries lookup and
	// returns only the entries that exist on ledger, in server order.
	LedgerEntries(ctx context.Context, keys []xdr.LedgerKey) ([]LedgerEntry, error)
}

// LedgerEntry is one live entry from a getLedgerEntries result. Key and XDR
// hold base64-encoded LedgerKey and LedgerEntryData payloads.
type LedgerEntry struct {
	Key                string `json:"key"`
	XDR                string `json:"xdr"`
	LastModifiedLedger uint32 `json:"lastModifiedLedgerSeq"`
}
