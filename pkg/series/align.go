// Copyright (C) 2025 Verdant Labs (oss@verdantlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package series

// AlignTimestamps merges two timestamp-ordered series into their time-matched
// subsequences. Two samples match when their timestamps differ by less than
// the tolerance, which is the smaller of the two series' own sampling
// intervals (the gap between their first two samples). A single left-to-right
// merge with two cursors: matched pairs are emitted into both outputs,
// otherwise the cursor at the earlier timestamp advances. O(n+m).
//
// Both inputs must already be in ascending timestamp order; this is a
// precondition, not re-validated here. A series with fewer than two samples
// cannot establish a sampling interval and yields zero matches.
//
// Swapping a and b yields the same matched pairs with the outputs swapped.
func AlignTimestamps(a, b Series) (Series, Series) {
	emptyA := Series{Query: a.Query, Labels: a.Labels}
	emptyB := Series{Query: b.Query, Labels: b.Labels}
	if len(a.Samples) < 2 || len(b.Samples) < 2 {
		return emptyA, emptyB
	}

	tolerance := a.Samples[1].Timestamp - a.Samples[0].Timestamp
	if interval := b.Samples[1].Timestamp - b.Samples[0].Timestamp; interval < tolerance {
		tolerance = interval
	}

	var matchedA, matchedB []Sample
	i, j := 0, 0
	for i < len(a.Samples) && j < len(b.Samples) {
		sa, sb := a.Samples[i], b.Samples[j]
		delta := sa.Timestamp - sb.Timestamp
		if delta < 0 {
			delta = -delta
		}
		switch {
		case delta < tolerance:
			matchedA = append(matchedA, sa)
			matchedB = append(matchedB, sb)
			i++
			j++
		case sa.Timestamp < sb.Timestamp:
			i++
		default:
			j++
		}
	}

	emptyA.Samples = matchedA
	emptyB.Samples = matchedB
	return emptyA, emptyB
}
