// Package storagekey generates the candidate wire encodings of an admin
// storage key. Contracts store the same logical key under different shapes
// depending on how their storage enum was written, so lookups have to probe
// every plausible encoding.
package storagekey

import (
	"encoding/base64"
	"fmt"

	"github.com/stellar/go/xdr"
)

// maxSymbolLen is the wire bound on symbol payloads (SCSYMBOL_LIMIT).
const maxSymbolLen = 32

// Set is an insertion-ordered set of candidate storage keys, deduplicated by
// encoded wire value. Two keys are the same key iff their XDR bytes match.
type Set struct {
	vals []xdr.ScVal
	seen map[string]struct{}
}

// caseTransforms and keyShapes enumerate the full variant space explicitly:
// three case transforms crossed with three wire shapes, at most 9 variants.
var caseTransforms = []func(string) string{asciiLower, asciiUpper, asciiCapitalized}

var keyShapes = []func(string) (xdr.ScVal, error){enumVariantKey, symbolKey, stringKey}

// Variants builds the candidate key set for an admin storage key. Identical
// encodings collapse silently (single-letter and non-alphabetic keys produce
// coinciding case transforms). Keys that cannot be encoded as a wire symbol
// surface the encoding error.
func Variants(key string) (*Set, error) {
	s := &Set{seen: make(map[string]struct{}, len(caseTransforms)*len(keyShapes))}
	for _, transform := range caseTransforms {
		k := transform(key)
		for _, shape := range keyShapes {
			v, err := shape(k)
			if err != nil {
				return nil, err
			}
			if err := s.add(v); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Len returns the number of distinct encoded keys.
func (s *Set) Len() int { return len(s.vals) }

// Values returns the keys in insertion order.
func (s *Set) Values() []xdr.ScVal {
	return append([]xdr.ScVal(nil), s.vals...)
}

// Contains reports whether v encodes to the same wire bytes as a key in the
// set. Values that fail to encode cannot match anything.
func (s *Set) Contains(v xdr.ScVal) bool {
	enc, err := encode(v)
	if err != nil {
		return false
	}
	_, ok := s.seen[enc]
	return ok
}

func (s *Set) add(v xdr.ScVal) error {
	enc, err := encode(v)
	if err != nil {
		return err
	}
	if _, ok := s.seen[enc]; ok {
		return nil
	}
	s.seen[enc] = struct{}{}
	s.vals = append(s.vals, v)
	return nil
}

func encode(v xdr.ScVal) (string, error) {
	b, err := v.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// symbolKey encodes the key as a bare symbol.
func symbolKey(k string) (xdr.ScVal, error) {
	if len(k) > maxSymbolLen {
		return xdr.ScVal{}, fmt.Errorf("key %q exceeds %d-byte symbol bound", k, maxSymbolLen)
	}
	return xdr.NewScVal(xdr.ScValTypeScvSymbol, xdr.ScSymbol(k))
}

// stringKey encodes the key as a general text string.
func stringKey(k string) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvString, xdr.ScString(k))
}

// enumVariantKey encodes the key the way contract SDKs encode a unit enum
// variant: a single-element vector wrapping the symbol.
func enumVariantKey(k string) (xdr.ScVal, error) {
	sym, err := symbolKey(k)
	if err != nil {
		return xdr.ScVal{}, err
	}
	vec := xdr.ScVec{sym}
	return xdr.NewScVal(xdr.ScValTypeScvVec, &vec)
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func asciiCapitalized(s string) string {
	b := []byte(asciiLower(s))
	if len(b) > 0 && b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
