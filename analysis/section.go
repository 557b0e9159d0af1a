package analysis

import (
	"fmt"

	"github.com/wippyai/wasm-audit/wasm"
)

// Section is one row of the byte accounting table. HeaderLocation is
// the offset of the section's tag byte, reconstructed by subtracting
// the header size (length varint plus one tag byte) from the content
// range start.
type Section struct {
	Type           string
	HeaderLocation int
	ItemCount      *uint32
	Range          wasm.Range
	Size           int
}

const sectionTableHeader = "Header Start     Content Start    Content End     Size (HEX)    Size    Type               Items"

// String renders one table row. Sections without an item count omit
// both the header location and the items column.
func (s Section) String() string {
	if s.ItemCount != nil {
		return fmt.Sprintf("%#014x : %#014x - %#014x%#10x%10d  %-18s%8d",
			s.HeaderLocation, s.Range.Start, s.Range.End-1,
			s.Size, s.Size, s.Type, *s.ItemCount)
	}
	return fmt.Sprintf("%14s : %#014x - %#014x%#10x%10d  %-18s",
		"", s.Range.Start, s.Range.End-1, s.Size, s.Size, s.Type)
}
