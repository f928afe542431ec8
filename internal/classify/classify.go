// Package classify determines who controls a Stellar account from its signer
// state, splitting automated wallets from MPC custody by transaction cadence.
package classify

import (
	"context"
	"fmt"
	"sort"

	"github.com/sorolens/admintype/pkg/horizon"
)

// Kind enumerates the controller verdicts.
type Kind int

const (
	KindContract Kind = iota
	KindDeactivated
	KindMultisig
	KindHotWallet
	KindMPC
)

// AccountType is the classification verdict. Threshold and Total carry the
// signature quorum and are only meaningful for multisig accounts.
type AccountType struct {
	Kind      Kind
	Threshold uint8
	Total     uint8
}

func Contract() AccountType    { return AccountType{Kind: KindContract} }
func Deactivated() AccountType { return AccountType{Kind: KindDeactivated} }
func HotWallet() AccountType   { return AccountType{Kind: KindHotWallet} }
func MPC() AccountType         { return AccountType{Kind: KindMPC} }

func Multisig(threshold, total uint8) AccountType {
	return AccountType{Kind: KindMultisig, Threshold: threshold, Total: total}
}

func (t AccountType) String() string {
	switch t.Kind {
	case KindContract:
		return "Contract"
	case KindDeactivated:
		return "Deactivated Account"
	case KindMultisig:
		return fmt.Sprintf("Multisig %d/%d", t.Threshold, t.Total)
	case KindHotWallet:
		return "Hot Wallet"
	case KindMPC:
		return "MPC"
	}
	return "Unknown"
}

// hotWalletMaxGap is the largest minimum ledger gap (roughly a minute of
// ledgers) still consistent with automated signing.
const hotWalletMaxGap = 12

// Classifier reads signer state and transaction history from a Horizon index.
type Classifier struct {
	idx horizon.Index
}

func New(idx horizon.Index) *Classifier { return &Classifier{idx: idx} }

// Classify determines the account type behind accountID. Signer weights and
// the low threshold decide everything except the hot-wallet/MPC split, which
// needs the account's transaction cadence.
func (c *Classifier) Classify(ctx context.Context, accountID string) (AccountType, error) {
	acc, err := c.idx.Account(ctx, accountID)
	if err != nil {
		return AccountType{}, err
	}
	verdict, needsCadence := classifySigners(acc)
	if !needsCadence {
		return verdict, nil
	}
	gap, err := c.minLedgerGap(ctx, accountID)
	if err != nil {
		return AccountType{}, err
	}
	if gap <= hotWalletMaxGap {
		return HotWallet(), nil
	}
	return MPC(), nil
}

// classifySigners maps signer state to a verdict. The bool reports whether
// the verdict is tentative and needs the cadence check: a signer that can
// act alone (weight >= low threshold, including low == 0) looks like a hot
// wallet until cadence says otherwise.
func classifySigners(acc horizon.Account) (AccountType, bool) {
	var maxWeight uint8
	for _, s := range acc.Signers {
		if s.Weight > maxWeight {
			maxWeight = s.Weight
		}
	}
	if maxWeight == 0 {
		return Deactivated(), false
	}
	low := acc.Thresholds.LowThreshold
	if maxWeight >= low {
		return HotWallet(), true
	}
	weights := make([]uint8, 0, len(acc.Signers))
	for _, s := range acc.Signers {
		if s.Weight > 0 {
			weights = append(weights, s.Weight)
		}
	}
	sort.Slice(weights, func(i, j int) bool { return weights[i] > weights[j] })
	sum := 0
	for i, w := range weights {
		sum += int(w)
		if sum >= int(low) {
			return Multisig(uint8(i+1), uint8(len(weights))), false
		}
	}
	// No signer combination reaches the threshold, so nothing can act.
	return Deactivated(), false
}
