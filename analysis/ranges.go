package analysis

import (
	"fmt"
	"strings"
)

// FormatRanges compresses an ascending-sorted index list into a
// compact display form, merging runs of consecutive values:
//
//	[1, 2, 4, 5, 7, 9, 10] -> "[1..2, 4..5, 7, 9..10]"
//
// An index joins the open run iff it equals the previous value plus
// one; any break starts a new entry.
func FormatRanges(indexes []uint32) string {
	if len(indexes) == 0 {
		return "[]"
	}

	var b strings.Builder
	b.WriteByte('[')

	flush := func(start, end uint32) {
		if b.Len() > 1 {
			b.WriteString(", ")
		}
		if start == end {
			fmt.Fprintf(&b, "%d", start)
		} else {
			fmt.Fprintf(&b, "%d..%d", start, end)
		}
	}

	start, end := indexes[0], indexes[0]
	for _, i := range indexes[1:] {
		if i != end+1 {
			flush(start, end)
			start = i
		}
		end = i
	}
	flush(start, end)

	b.WriteByte(']')
	return b.String()
}
