package layout

// Share is one entity competing for part of a parent span.
type Share[K any] struct {
	Key   K
	Value float64
}

// Span is the angular interval [Start, End) given to Key.
type Span[K any] struct {
	Key   K
	Start float64
	End   float64
}

func (s Span[K]) Width() float64 { return s.End - s.Start }

// Partition splits [start, end) among the shares with a positive value, in
// input order, each getting value/Σvalues of the width. The last span ends
// exactly at end. No positive value means no spans.
func Partition[K any](start, end float64, shares []Share[K]) []Span[K] {
	var total float64
	for _, s := range shares {
		if s.Value > 0 {
			total += s.Value
		}
	}
	spans := PartitionOver(start, end, shares, total)
	if n := len(spans); n > 0 {
		spans[n-1].End = end
	}
	return spans
}

// PartitionOver is Partition with an externally supplied denominator.
// Spans only fill the whole width when total equals the sum of the positive
// values. A total that is not strictly positive yields no spans.
func PartitionOver[K any](start, end float64, shares []Share[K], total float64) []Span[K] {
	if !(total > 0) {
		return nil
	}
	width := end - start
	var spans []Span[K]
	cur := start
	for _, s := range shares {
		if !(s.Value > 0) {
			continue
		}
		next := cur + s.Value/total*width
		spans = append(spans, Span[K]{Key: s.Key, Start: cur, End: next})
		cur = next
	}
	return spans
}

// EqualPartition gives every key the same share of [start, end),
// regardless of any value.
func EqualPartition[K any](start, end float64, keys []K) []Span[K] {
	if len(keys) == 0 {
		return nil
	}
	step := (end - start) / float64(len(keys))
	spans := make([]Span[K], len(keys))
	for i, k := range keys {
		spans[i] = Span[K]{Key: k, Start: start + float64(i)*step, End: start + float64(i+1)*step}
	}
	spans[len(spans)-1].End = end
	return spans
}
