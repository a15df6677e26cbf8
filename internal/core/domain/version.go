package domain

import (
	"strconv"
	"strings"
)

// CompareVersions orders two version strings segment by segment.
// Numeric segments compare as numbers, others lexicographically. An epoch
// prefix ("1:") is treated as a leading segment.
func CompareVersions(a, b string) int {
	as, bs := versionSegments(withEpoch(a)), versionSegments(withEpoch(b))
	for i := 0; i < len(as) || i < len(bs); i++ {
		if i >= len(as) {
			return -1
		}
		if i >= len(bs) {
			return 1
		}
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return 0
}

// IsMajorBump reports whether the first numeric segment of to is greater than from's.
func IsMajorBump(from, to string) bool {
	if from == "" || to == "" {
		return false
	}
	fm, okFrom := majorSegment(from)
	tm, okTo := majorSegment(to)
	return okFrom && okTo && tm > fm
}

func majorSegment(v string) (uint64, bool) {
	if _, rest, ok := strings.Cut(v, ":"); ok {
		v = rest
	}
	for _, seg := range versionSegments(v) {
		if n, err := strconv.ParseUint(seg, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func withEpoch(v string) string {
	if strings.Contains(v, ":") {
		return v
	}
	return "0:" + v
}

func versionSegments(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-' || r == ':' || r == '+' || r == '_'
	})
}

func compareSegment(a, b string) int {
	an, errA := strconv.ParseUint(a, 10, 64)
	bn, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
