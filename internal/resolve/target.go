package resolve

import (
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// TargetKind discriminates what kind of entity controls an address.
type TargetKind int

const (
	// TargetEOA is an externally owned Stellar account (G address) that can
	// be classified further from its signer state.
	TargetEOA TargetKind = iota
	// TargetContract covers every non-account controller. Contract control
	// is terminal for classification.
	TargetContract
)

// ControlTarget is the decoded controller behind a stored admin value.
type ControlTarget struct {
	Kind    TargetKind
	Account string // strkey account ID, set when Kind == TargetEOA
}

// ParseAddress parses a strkey address into its XDR form. Only account (G)
// and contract (C) addresses are meaningful targets here.
func ParseAddress(s string) (xdr.ScAddress, error) {
	if accountID, err := xdr.AddressToAccountId(s); err == nil {
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &accountID}, nil
	}
	if raw, err := strkey.Decode(strkey.VersionByteContract, s); err == nil {
		var id xdr.ContractId
		copy(id[:], raw)
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &id}, nil
	}
	return xdr.ScAddress{}, fmt.Errorf("%w: %q", ErrMalformedAddress, s)
}

// DecodeControlTarget interprets a stored admin value. Only address values
// name a controller; an account address can be classified further while any
// other address form behaves like a contract.
func DecodeControlTarget(v xdr.ScVal) (ControlTarget, error) {
	addr, ok := v.GetAddress()
	if !ok {
		return ControlTarget{}, fmt.Errorf("%w: admin value is %v", ErrWrongStorageType, v.Type)
	}
	if addr.Type == xdr.ScAddressTypeScAddressTypeAccount {
		accountID, ok := addr.GetAccountId()
		if !ok {
			return ControlTarget{}, fmt.Errorf("%w: account address carries no id", ErrWrongStorageType)
		}
		return ControlTarget{Kind: TargetEOA, Account: accountID.Address()}, nil
	}
	return ControlTarget{Kind: TargetContract}, nil
}
