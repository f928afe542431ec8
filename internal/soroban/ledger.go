package soroban

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/stellar/go/xdr"
)

type ledgerEntriesResult struct {
	Entries      []LedgerEntry `json:"entries"`
	LatestLedger uint32        `json:"latestLedger"`
}

// LedgerEntries looks up all keys in one batched getLedgerEntries call.
// Keys absent from the ledger are simply missing from the result.
func (c *Client) LedgerEntries(ctx context.Context, keys []xdr.LedgerKey) ([]LedgerEntry, error) {
	encoded := make([]string, 0, len(keys))
	for _, k := range keys {
		b64, err := marshalKeyBase64(k)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, b64)
	}
	var res ledgerEntriesResult
	params := map[string]interface{}{"keys": encoded}
	if err := c.call(ctx, "getLedgerEntries", params, &res); err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// InstanceStorage fetches the contract's instance entry and returns its
// storage map. Instance entries live under persistent durability with the
// reserved instance key.
func (c *Client) InstanceStorage(ctx context.Context, contract xdr.ScAddress) ([]xdr.ScMapEntry, error) {
	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   contract,
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
	entries, err := c.LedgerEntries(ctx, []xdr.LedgerKey{key})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("contract instance entry not found")
	}
	data, err := DecodeLedgerEntryData(entries[0].XDR)
	if err != nil {
		return nil, err
	}
	contractData, ok := data.GetContractData()
	if !ok {
		return nil, fmt.Errorf("instance entry is not contract data")
	}
	instance, ok := contractData.Val.GetInstance()
	if !ok {
		return nil, fmt.Errorf("instance entry does not hold a contract instance")
	}
	if instance.Storage == nil {
		return nil, nil
	}
	return *instance.Storage, nil
}

// DecodeLedgerEntryData decodes a base64 LedgerEntryData payload as returned
// by getLedgerEntries.
func DecodeLedgerEntryData(b64 string) (xdr.LedgerEntryData, error) {
	var data xdr.LedgerEntryData
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return data, err
	}
	if err := data.UnmarshalBinary(raw); err != nil {
		return xdr.LedgerEntryData{}, err
	}
	return data, nil
}

func marshalKeyBase64(k xdr.LedgerKey) (string, error) {
	raw, err := k.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
