package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]column{{title: "Name"}, {title: "Count", numeric: true}},
		[][]string{{"tickets", "7"}},
	)

	requireContains(t, out, "Name")
	requireContains(t, out, "Count")
	// Right alignment pads the numeric cell out to the header width.
	requireContains(t, out, "    7")
	if strings.Contains(out, "7    ") {
		t.Fatalf("numeric column rendered left-aligned:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]column{{title: "A"}, {title: "B"}, {title: "C"}},
		[][]string{{"only"}},
	)

	requireContains(t, out, "only")
	if strings.Contains(out, "<nil>") {
		t.Fatalf("missing cells rendered as nil:\n%s", out)
	}
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty render, got %q", out)
	}
}
