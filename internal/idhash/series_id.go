package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"timeframe-chart/internal/domain"
)

// ComputeViewID computes a deterministic identifier for a view using SHA256.
// Formula: SHA256(granularity|n|timestamp_1|value_1|...|timestamp_n|value_n)
// Returns hex-encoded hash (64 characters).
func ComputeViewID(series domain.Series, g domain.Granularity) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d", g, len(series))
	for _, s := range series {
		fmt.Fprintf(h, "|%s|%s", s.Timestamp, domain.FormatValue(s.Value))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ETag returns the view ID as a quoted HTTP entity tag, optionally qualified by variant.
func ETag(series domain.Series, g domain.Granularity, variant string) string {
	id := ComputeViewID(series, g)
	if variant != "" {
		return fmt.Sprintf(`"%s-%s"`, id[:32], variant)
	}
	return fmt.Sprintf(`"%s"`, id[:32])
}
