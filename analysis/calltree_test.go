package analysis_test

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-audit/analysis"
)

func TestCallTreeRendering(t *testing.T) {
	a := analyzeTestModule(t, allOptions)
	report := a.Report()

	// #1 calls #2 then itself; #2 calls back into #1. Both cycle
	// edges terminate instead of recursing.
	want := "Function Call Tree:\n" +
		"\t#1 'run'\n" +
		"        +- #2\n" +
		"           +- #1 Cyclic call\n" +
		"        +- #1 Cyclic call\n"

	if !strings.Contains(report, want) {
		t.Errorf("report call tree mismatch, want:\n%s\ngot:\n%s", want, report)
	}
}

func TestCallTreeSharedSubtree(t *testing.T) {
	// The ancestor-path check must allow the same function to appear
	// under sibling branches; only a true ancestor revisit is cyclic.
	a := analyzeTestModule(t, analysis.Options{Functions: true, CallTree: true})
	report := a.Report()

	if strings.Count(report, "+- #1 Cyclic call") != 2 {
		t.Errorf("expected two cyclic terminations, got:\n%s", report)
	}
	if strings.Count(report, "+- #2\n") != 1 {
		t.Errorf("expected #2 to appear once, got:\n%s", report)
	}
}
