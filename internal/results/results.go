// Package results groups and formats launch solutions for display.
package results

import (
	"slices"
	"strconv"
	"strings"

	"github.com/OCAP2/aimsolver/pkg/core"
)

// MaxShown is the default number of hits rendered per line.
const MaxShown = 5

// BucketWidth is the angle span of one bucket, in degrees.
const BucketWidth = 10

// Bucket holds the hits whose rounded angle falls in [Key, Key+BucketWidth).
type Bucket struct {
	Key  int
	Hits []core.Hit
}

// Line is one rendered row of a report.
type Line struct {
	Label string
	Text  string
}

// Report is the display form of one calculation.
type Report struct {
	Best    string
	Buckets []Line
}

// BucketKey returns the lower bound of the bucket containing angle, using
// floor division so that -5 maps to -10.
func BucketKey(angle int) int {
	q := angle / BucketWidth
	if angle%BucketWidth != 0 && angle < 0 {
		q--
	}
	return q * BucketWidth
}

// Categorize partitions hits into buckets in ascending key order. Hits keep
// their relative order inside a bucket. The input is not modified.
func Categorize(hits []core.Hit) []Bucket {
	if len(hits) == 0 {
		return nil
	}

	index := make(map[int]int)
	var buckets []Bucket
	for _, h := range hits {
		key := BucketKey(h.RoundedAngle())
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Hits = append(buckets[i].Hits, h)
	}

	slices.SortFunc(buckets, func(a, b Bucket) int {
		return a.Key - b.Key
	})
	return buckets
}

// Format renders at most limit hits as space separated tokens. Extra hits
// are left out of the string only.
func Format(hits []core.Hit, limit int) string {
	if limit <= 0 || len(hits) == 0 {
		return ""
	}

	n := min(len(hits), limit)
	tokens := make([]string, n)
	for i := range n {
		tokens[i] = hits[i].String()
	}
	return strings.Join(tokens, " ")
}

// Summarize builds the best-first line and one line per bucket.
func Summarize(hits []core.Hit, limit int) Report {
	r := Report{Best: Format(hits, limit)}
	for _, b := range Categorize(hits) {
		r.Buckets = append(r.Buckets, Line{
			Label: strconv.Itoa(b.Key),
			Text:  Format(b.Hits, limit),
		})
	}
	return r
}

// Empty reports whether the calculation produced no hits.
func (r Report) Empty() bool {
	return r.Best == ""
}

// Lines renders the report as "Best -> ..." followed by "30 -> ..." rows.
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r.Buckets)+1)
	lines = append(lines, "Best -> "+r.Best)
	for _, b := range r.Buckets {
		lines = append(lines, b.Label+" -> "+b.Text)
	}
	return lines
}

func (r Report) String() string {
	return strings.Join(r.Lines(), "\n")
}
