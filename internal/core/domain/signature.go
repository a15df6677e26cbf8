package domain

import (
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Signature is the cache key of a computation.
type Signature string

// NewSignature hashes the kind, action, target set and external state version.
// Target order does not matter.
func NewSignature(kind WorkKind, action Action, targets []Target, stateVersion string) Signature {
	keys := make([]string, len(targets))
	for i, t := range targets {
		keys[i] = t.Source.String() + "/" + t.Name
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	d := xxhash.New()
	_, _ = d.WriteString(kind.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(action.String())
	_, _ = d.Write([]byte{0})
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.WriteString(stateVersion)

	return Signature(formatDigest(d.Sum64()))
}

// CombineSignatures hashes a list of signatures in order.
func CombineSignatures(sigs ...Signature) Signature {
	d := xxhash.New()
	for _, s := range sigs {
		_, _ = d.WriteString(string(s))
		_, _ = d.Write([]byte{0})
	}
	return Signature(formatDigest(d.Sum64()))
}

func formatDigest(sum uint64) string {
	s := strconv.FormatUint(sum, 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}
