package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Report renders the requested sub-analyses as the human-readable
// multi-section text report.
func (a *Analysis) Report() string {
	var b strings.Builder
	if a.opts.Sections {
		b.WriteString(a.SectionsReport())
	}
	if a.opts.Functions {
		b.WriteByte('\n')
		b.WriteString(a.FunctionsReport())
	}
	if a.opts.Operators {
		b.WriteByte('\n')
		b.WriteString(a.OperatorsReport())
	}
	return b.String()
}

// String implements fmt.Stringer.
func (a *Analysis) String() string {
	return a.Report()
}

// SectionsReport renders the byte accounting table.
func (a *Analysis) SectionsReport() string {
	var b strings.Builder
	b.WriteString("Sections:\n")
	b.WriteString(sectionTableHeader)
	b.WriteByte('\n')
	for _, s := range a.Sections {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Total Size: %d\n", a.SectionsSizeTotal)
	return b.String()
}

// FunctionsReport renders the function classification tables, the
// compact range summaries and, when requested, the call tree.
func (a *Analysis) FunctionsReport() string {
	var b strings.Builder
	b.WriteString("Functions:\n")

	fmt.Fprintf(&b, "Imported Functions (%d):\n", len(a.ImportedFunctions))
	writeNameTable(&b, a.ImportedFunctions)
	fmt.Fprintf(&b, "Implemented Functions (%d):\n", a.ImplementedCount)
	fmt.Fprintf(&b, "Exported Functions (%d):\n", len(a.ExportedFunctions))
	writeNameTable(&b, a.ExportedFunctions)

	if called := a.CalledFunctions(); len(called) > 0 {
		fmt.Fprintf(&b, "\nStatically Called Functions (%d): %s\n",
			len(called), FormatRanges(called))
	}
	if len(a.DynamicDispatch) > 0 {
		fmt.Fprintf(&b, "\nDynamic Dispatch Functions (%d): %s\n",
			len(a.DynamicDispatch), FormatRanges(a.DynamicDispatch))
	}
	if uncalled := a.UncalledFunctions(); len(uncalled) > 0 {
		fmt.Fprintf(&b, "\nUncalled Functions (%d): %s\n",
			len(uncalled), FormatRanges(uncalled))
	}

	if a.opts.CallTree {
		b.WriteString("\nFunction Call Tree:\n")
		a.writeCallTree(&b)
	}
	return b.String()
}

// OperatorsReport renders the operator frequency table, descending by
// count with ties in first-seen order.
func (a *Analysis) OperatorsReport() string {
	var b strings.Builder
	b.WriteString("Operators:\n")
	fmt.Fprintf(&b, "Operators Count: %d\n", a.OperatorCount)
	b.WriteString("Operator Usage:\n")
	b.WriteString("\tOperator             Count\n")
	for _, u := range a.SortedOperators {
		fmt.Fprintf(&b, "\t%-18s%8d\n", u.Name, u.Count)
	}
	return b.String()
}

// writeNameTable prints an index -> name table in ascending index order.
func writeNameTable(b *strings.Builder, names map[uint32]string) {
	indexes := make([]uint32, 0, len(names))
	for idx := range names {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })
	for _, idx := range indexes {
		fmt.Fprintf(b, " %5d '%s'\n", idx, names[idx])
	}
}
