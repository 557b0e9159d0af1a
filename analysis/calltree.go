package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// writeCallTree renders one tree per exported function that appears in
// the call graph, in ascending index order.
func (a *Analysis) writeCallTree(b *strings.Builder) {
	roots := make([]uint32, 0, len(a.ExportedFunctions))
	for idx := range a.ExportedFunctions {
		if _, ok := a.Calls[idx]; ok {
			roots = append(roots, idx)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	for _, root := range roots {
		fmt.Fprintf(b, "\t#%d '%s'\n", root, a.ExportedFunctions[root])
		a.writeCallees(b, []uint32{root})
		b.WriteByte('\n')
	}
}

// writeCallees prints the callees of the last function on the chain,
// recursing per callee. The chain holds ancestors of the current
// branch only, so a function may legitimately appear under several
// sibling branches; a callee already on the chain is a true cycle and
// is rendered as a terminus instead of recursing.
func (a *Analysis) writeCallees(b *strings.Builder, chain []uint32) {
	callees, ok := a.Calls[chain[len(chain)-1]]
	if !ok {
		return
	}
	indent := strings.Repeat(" ", len(chain)*3)
	for _, callee := range callees {
		if onChain(chain, callee) {
			fmt.Fprintf(b, "     %s+- #%d Cyclic call\n", indent, callee)
			continue
		}
		fmt.Fprintf(b, "     %s+- #%d\n", indent, callee)
		a.writeCallees(b, append(chain, callee))
	}
}

func onChain(chain []uint32, idx uint32) bool {
	for _, c := range chain {
		if c == idx {
			return true
		}
	}
	return false
}
