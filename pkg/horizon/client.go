// Package horizon is a thin client for the Horizon REST API, scoped to the
// account and transaction-history reads account classification needs.
package horizon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PageLimit is the per-page record cap requested from Horizon. A page with
// fewer records marks the end of the history.
const PageLimit = 200

var (
	ErrFetch = errors.New("failed to fetch horizon data")
	ErrParse = errors.New("failed to parse horizon data json")
)

// httpNewRequest is a small test seam to stub request creation errors in unit tests.
// It preserves production behavior (defaults to http.NewRequestWithContext).
var httpNewRequest = http.NewRequestWithContext

// Index is the read surface of a Horizon server. Concrete adapters are the
// hosted Horizon deployments per network.
type Index interface {
	// Account returns the signer and threshold state of an account.
	Account(ctx context.Context, accountID string) (Account, error)

	// Transactions fetches one page of an account's transaction history.
	// The first page passes pageURL == ""; later pages pass the previous
	// page's Next link verbatim.
	Transactions(ctx context.Context, accountID, pageURL string) (TransactionPage, error)
}

// Thresholds carries the account's low threshold; medium and high do not
// participate in classification.
type Thresholds struct {
	LowThreshold uint8 `json:"low_threshold"`
}

type Signer struct {
	Weight uint8 `json:"weight"`
}

type Account struct {
	Thresholds Thresholds
	Signers    []Signer
}

type Transaction struct {
	Ledger        uint64 `json:"ledger"`
	PagingToken   string `json:"paging_token"`
	SourceAccount string `json:"source_account"`
	FeeAccount    string `json:"fee_account"`
}

// TransactionPage is one page of history plus the link to the next one.
type TransactionPage struct {
	Records []Transaction
	Next    string
}

// Client is a thin Horizon HTTP client. The base URL must carry its trailing
// slash; endpoint paths are appended verbatim.
type Client struct {
	base       string
	hc         *http.Client
	reqTimeout time.Duration
}

// New creates a Client for the given Horizon base URL using the given
// http.Client (or a default one if nil).
func New(base string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: base, hc: client, reqTimeout: 30 * time.Second}
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.reqTimeout)
}

type accountBody struct {
	Thresholds *Thresholds `json:"thresholds"`
	Signers    []Signer    `json:"signers"`
}

func (c *Client) Account(ctx context.Context, accountID string) (Account, error) {
	raw, err := c.get(ctx, "account", c.base+"accounts/"+accountID+"/")
	if err != nil {
		return Account{}, err
	}
	var body accountBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if body.Thresholds == nil || body.Signers == nil {
		return Account{}, fmt.Errorf("%w: account response missing thresholds or signers", ErrParse)
	}
	return Account{Thresholds: *body.Thresholds, Signers: body.Signers}, nil
}

type transactionsPageBody struct {
	Links *struct {
		Next *struct {
			Href string `json:"href"`
		} `json:"next"`
	} `json:"_links"`
	Embedded *struct {
		Records []Transaction `json:"records"`
	} `json:"_embedded"`
}

func (c *Client) Transactions(ctx context.Context, accountID, pageURL string) (TransactionPage, error) {
	u := pageURL
	if u == "" {
		u = fmt.Sprintf("%saccounts/%s/transactions?limit=%d&include_failed=false", c.base, accountID, PageLimit)
	}
	raw, err := c.get(ctx, "transactions", u)
	if err != nil {
		return TransactionPage{}, err
	}
	var body transactionsPageBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return TransactionPage{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if body.Embedded == nil || body.Embedded.Records == nil {
		return TransactionPage{}, fmt.Errorf("%w: page missing transaction records", ErrParse)
	}
	if body.Links == nil || body.Links.Next == nil {
		return TransactionPage{}, fmt.Errorf("%w: page missing next link", ErrParse)
	}
	return TransactionPage{Records: body.Embedded.Records, Next: body.Links.Next.Href}, nil
}

// get performs a single GET. Failures are terminal; the caller never retries.
func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	reqCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := httpNewRequest(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %v", ErrFetch, &httpStatusErr{code: resp.StatusCode, body: string(b), op: op})
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return b, nil
}

type httpStatusErr struct {
	code     int
	body, op string
}

func (e *httpStatusErr) Error() string {
	return fmt.Sprintf("horizon %s http %d: %s", e.op, e.code, e.body)
}
