package classify

import (
	"context"
	"math"
	"time"

	"github.com/sorolens/admintype/internal/logging"
	"github.com/sorolens/admintype/pkg/horizon"
)

// UnboundedGap marks a history too short to measure a cadence from.
const UnboundedGap = math.MaxUint64

// minLedgerGap walks the account's full transaction history and returns the
// smallest ledger distance between consecutive transactions the account
// drove, as transaction source or fee source. Records are deduplicated by
// paging token; pages arrive in ascending ledger order. Fewer than two
// matching transactions yield UnboundedGap. Any page failure aborts the
// whole walk.
func (c *Classifier) minLedgerGap(ctx context.Context, accountID string) (gap uint64, err error) {
	start := time.Now()
	pages := 0
	fetched := 0
	matched := 0
	logger := logging.Logger()
	defer func() {
		if logger == nil {
			return
		}
		fields := []any{
			"component", "classify.tx_frequency",
			"account", accountID,
			"pages", pages,
			"tx_fetched", fetched,
			"tx_matched", matched,
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			logger.Warn("tx_frequency_failed", append(fields, "error", err.Error())...)
			return
		}
		logger.Info("tx_frequency", append(fields, "min_gap", gap)...)
	}()

	seen := make(map[string]struct{})
	var ledgers []uint64
	pageURL := ""
	for {
		page, perr := c.idx.Transactions(ctx, accountID, pageURL)
		if perr != nil {
			return 0, perr
		}
		pages++
		fetched += len(page.Records)
		for _, tx := range page.Records {
			if tx.SourceAccount != accountID && tx.FeeAccount != accountID {
				continue
			}
			if _, ok := seen[tx.PagingToken]; ok {
				continue
			}
			seen[tx.PagingToken] = struct{}{}
			matched++
			ledgers = append(ledgers, tx.Ledger)
		}
		if len(page.Records) < horizon.PageLimit {
			break
		}
		pageURL = page.Next
	}
	gap = UnboundedGap
	for i := 1; i < len(ledgers); i++ {
		if d := ledgers[i] - ledgers[i-1]; d < gap {
			gap = d
		}
	}
	return gap, nil
}
