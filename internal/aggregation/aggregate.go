// Package aggregation groups a series into time buckets.
package aggregation

import (
	"math"

	"github.com/shopspring/decimal"

	"timeframe-chart/internal/domain"
)

// bucket accumulates the values that share one key.
// NaN and ±Inf cannot be represented as decimals and are summed as floats.
type bucket struct {
	key     string
	sum     decimal.Decimal
	special float64
	inexact bool
}

func (b *bucket) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		b.special += v
		b.inexact = true
		return
	}
	b.sum = b.sum.Add(decimal.NewFromFloat(v))
}

func (b *bucket) value() float64 {
	v := b.sum.InexactFloat64()
	if b.inexact {
		v += b.special
	}
	return v
}

// Aggregate reduces series under granularity g.
//
// Raw returns series unchanged. Weekly and monthly sum the values of every
// sample sharing a bucket key; the result holds one sample per distinct key,
// timestamped with the key, in first-occurrence order. series is not modified.
func Aggregate(series domain.Series, g domain.Granularity) domain.Series {
	if !g.IsBucketed() {
		return series
	}
	if len(series) == 0 {
		return domain.Series{}
	}

	index := make(map[string]int)
	var buckets []*bucket

	for _, s := range series {
		key := BucketKey(s.Timestamp, g)

		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, &bucket{key: key})
		}
		buckets[i].add(s.Value)
	}

	result := make(domain.Series, len(buckets))
	for i, b := range buckets {
		result[i] = domain.Sample{Timestamp: b.key, Value: b.value()}
	}
	return result
}

// DistinctKeys returns the distinct bucket keys of series under a bucketed
// granularity g in first-occurrence order.
func DistinctKeys(series domain.Series, g domain.Granularity) []string {
	seen := make(map[string]struct{}, len(series))
	var keys []string
	for _, s := range series {
		key := BucketKey(s.Timestamp, g)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
