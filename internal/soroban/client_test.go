package soroban

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stellar/go/xdr"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func mkResp(v any) *http.Response {
	b, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "result": v})
	return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(b)), Header: http.Header{"Content-Type": []string{"application/json"}}}
}

func mkRPCErr(code int, msg string) *http.Response {
	b, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "error": map[string]any{"code": code, "message": msg}})
	return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(b)), Header: http.Header{"Content-Type": []string{"application/json"}}}
}

func testClient(t *testing.T, rt rtFunc) *Client {
	t.Helper()
	c, err := NewClient("http://unit-test", &http.Client{Transport: rt})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func mustScVal(t *testing.T, ty xdr.ScValType, value any) xdr.ScVal {
	t.Helper()
	v, err := xdr.NewScVal(ty, value)
	if err != nil {
		t.Fatalf("NewScVal(%v): %v", ty, err)
	}
	return v
}

func testContractAddress() xdr.ScAddress {
	var id xdr.ContractId
	for i := range id {
		id[i] = 7
	}
	return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &id}
}

func instanceEntryB64(t *testing.T, storage *xdr.ScMap) string {
	t.Helper()
	val, err := xdr.NewScVal(xdr.ScValTypeScvContractInstance, xdr.ScContractInstance{
		Executable: xdr.ContractExecutable{Type: xdr.ContractExecutableTypeContractExecutableStellarAsset},
		Storage:    storage,
	})
	if err != nil {
		t.Fatalf("NewScVal instance: %v", err)
	}
	data := xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.ContractDataEntry{
			Contract:   testContractAddress(),
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
			Val:        val,
		},
	}
	raw, err := data.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestNewClientValidatesEndpoint(t *testing.T) {
	bad := []string{"", "not a url", "sorobanrpc.com", "ftp://host", "http://"}
	for _, endpoint := range bad {
		if _, err := NewClient(endpoint, nil); !errors.Is(err, ErrMalformedURL) {
			t.Fatalf("NewClient(%q) err=%v, want ErrMalformedURL", endpoint, err)
		}
	}
	for _, endpoint := range []string{"http://localhost:8000/soroban/rpc", "https://mainnet.sorobanrpc.com"} {
		if _, err := NewClient(endpoint, nil); err != nil {
			t.Fatalf("NewClient(%q): %v", endpoint, err)
		}
	}
}

func TestLedgerEntriesRequestShape(t *testing.T) {
	keys := []xdr.LedgerKey{
		{
			Type: xdr.LedgerEntryTypeContractData,
			ContractData: &xdr.LedgerKeyContractData{
				Contract:   testContractAddress(),
				Key:        mustScVal(t, xdr.ScValTypeScvSymbol, xdr.ScSymbol("admin")),
				Durability: xdr.ContractDataDurabilityPersistent,
			},
		},
		{
			Type: xdr.LedgerEntryTypeContractData,
			ContractData: &xdr.LedgerKeyContractData{
				Contract:   testContractAddress(),
				Key:        mustScVal(t, xdr.ScValTypeScvString, xdr.ScString("admin")),
				Durability: xdr.ContractDataDurabilityPersistent,
			},
		},
	}
	want := make([]string, 0, len(keys))
	for _, k := range keys {
		b64, err := marshalKeyBase64(k)
		if err != nil {
			t.Fatalf("marshalKeyBase64: %v", err)
		}
		want = append(want, b64)
	}
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("content type = %q", got)
		}
		var req struct {
			Method string `json:"method"`
			Params struct {
				Keys []string `json:"keys"`
			} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "getLedgerEntries" {
			t.Fatalf("method = %q", req.Method)
		}
		if len(req.Params.Keys) != len(want) {
			t.Fatalf("sent %d keys, want %d", len(req.Params.Keys), len(want))
		}
		for i := range want {
			if req.Params.Keys[i] != want[i] {
				t.Fatalf("key %d = %q, want %q", i, req.Params.Keys[i], want[i])
			}
		}
		return mkResp(map[string]any{
			"entries": []map[string]any{
				{"key": want[0], "xdr": "AAAA", "lastModifiedLedgerSeq": 17},
			},
			"latestLedger": 42,
		}), nil
	})
	entries, err := c.LedgerEntries(context.Background(), keys)
	if err != nil {
		t.Fatalf("LedgerEntries: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != want[0] || entries[0].XDR != "AAAA" || entries[0].LastModifiedLedger != 17 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLedgerEntriesEmptyResult(t *testing.T) {
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		return mkResp(map[string]any{"entries": nil, "latestLedger": 42}), nil
	})
	entries, err := c.LedgerEntries(context.Background(), nil)
	if err != nil {
		t.Fatalf("LedgerEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		return mkRPCErr(-32602, "invalid params"), nil
	})
	_, err := c.LedgerEntries(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "rpc -32602") {
		t.Fatalf("err=%v, want rpc error", err)
	}
}

func TestCallSurfacesHTTPStatus(t *testing.T) {
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 503, Body: io.NopCloser(strings.NewReader("overloaded"))}, nil
	})
	_, err := c.LedgerEntries(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "http 503") {
		t.Fatalf("err=%v, want http status error", err)
	}
}

func TestInstanceStorage(t *testing.T) {
	storage := xdr.ScMap{
		{
			Key: mustScVal(t, xdr.ScValTypeScvSymbol, xdr.ScSymbol("admin")),
			Val: mustScVal(t, xdr.ScValTypeScvSymbol, xdr.ScSymbol("somebody")),
		},
	}
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		return mkResp(map[string]any{
			"entries": []map[string]any{
				{"key": "AAAA", "xdr": instanceEntryB64(t, &storage), "lastModifiedLedgerSeq": 3},
			},
			"latestLedger": 42,
		}), nil
	})
	entries, err := c.InstanceStorage(context.Background(), testContractAddress())
	if err != nil {
		t.Fatalf("InstanceStorage: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 storage entry, got %d", len(entries))
	}
	sym, ok := entries[0].Key.GetSym()
	if !ok || string(sym) != "admin" {
		t.Fatalf("unexpected storage key: %+v", entries[0].Key)
	}
}

func TestInstanceStorageMissingContract(t *testing.T) {
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		return mkResp(map[string]any{"entries": []map[string]any{}, "latestLedger": 42}), nil
	})
	if _, err := c.InstanceStorage(context.Background(), testContractAddress()); err == nil {
		t.Fatalf("expected error for missing instance entry")
	}
}

func TestInstanceStorageNonInstancePayload(t *testing.T) {
	data := xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.ContractDataEntry{
			Contract:   testContractAddress(),
			Key:        mustScVal(t, xdr.ScValTypeScvSymbol, xdr.ScSymbol("admin")),
			Durability: xdr.ContractDataDurabilityPersistent,
			Val:        mustScVal(t, xdr.ScValTypeScvSymbol, xdr.ScSymbol("somebody")),
		},
	}
	raw, err := data.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		return mkResp(map[string]any{
			"entries": []map[string]any{
				{"key": "AAAA", "xdr": base64.StdEncoding.EncodeToString(raw), "lastModifiedLedgerSeq": 3},
			},
			"latestLedger": 42,
		}), nil
	})
	if _, err := c.InstanceStorage(context.Background(), testContractAddress()); err == nil {
		t.Fatalf("expected error for non-instance payload")
	}
}

func TestInstanceStorageEmptyStorageMap(t *testing.T) {
	c := testClient(t, func(r *http.Request) (*http.Response, error) {
		return mkResp(map[string]any{
			"entries": []map[string]any{
				{"key": "AAAA", "xdr": instanceEntryB64(t, nil), "lastModifiedLedgerSeq": 3},
			},
			"latestLedger": 42,
		}), nil
	})
	entries, err := c.InstanceStorage(context.Background(), testContractAddress())
	if err != nil {
		t.Fatalf("InstanceStorage: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty storage, got %d entries", len(entries))
	}
}

func TestDecodeLedgerEntryDataRejectsGarbage(t *testing.T) {
	if _, err := DecodeLedgerEntryData("not base64!"); err == nil {
		t.Fatalf("expected base64 error")
	}
	if _, err := DecodeLedgerEntryData("AAAA"); err == nil {
		t.Fatalf("expected xdr decode error")
	}
}
