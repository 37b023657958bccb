package category

import (
	"slices"
	"testing"

	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
)

func node(id string, publish, schedule lineage.Status) lineage.Node {
	return lineage.Node{ID: id, WorkFlowPublishStatus: publish, SchedulePublishStatus: schedule}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		node  lineage.Node
		focus Focus
		want  Category
	}{
		{"FocusFullyPublished", node("1", "1", "1"), FocusOn("1"), Active},
		{"FocusUnpublished", node("1", "0", "0"), FocusOn("1"), Active},
		{"FocusPartial", node("1", "1", "0"), FocusOn("1"), Active},
		{"FocusUnknownStatus", node("1", "9", ""), FocusOn("1"), Active},
		{"Offline", node("2", "0", "1"), FocusOn("1"), Unpublished},
		{"OfflineNoSchedule", node("2", "0", ""), NoFocus, Unpublished},
		{"OnlineScheduleOffline", node("3", "1", "0"), FocusOn("1"), PartiallyPublished},
		{"OnlineScheduled", node("4", "1", "1"), FocusOn("1"), FullyPublished},
		{"OnlineScheduleMissing", node("4", "1", ""), NoFocus, FullyPublished},
		{"UnknownPublish", node("5", "7", "0"), NoFocus, FullyPublished},
		{"EmptyPublish", node("5", "", ""), NoFocus, FullyPublished},
		{"NoFocusNeverActive", node("", "0", "0"), NoFocus, Unpublished},
		{"EmptyFocusIDNeverActive", node("", "1", "1"), FocusOn(""), FullyPublished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.node, tt.focus); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyExhaustive(t *testing.T) {
	statuses := []lineage.Status{"", "0", "1", "2", "x"}
	for _, p := range statuses {
		for _, s := range statuses {
			n := node("n", p, s)

			if got := Classify(n, FocusOn("n")); got != Active {
				t.Errorf("Classify(%q,%q, focus) = %v, want active", p, s, got)
			}

			got := Classify(n, FocusOn("other"))
			var want Category
			switch {
			case p == "0":
				want = Unpublished
			case p == "1" && s == "0":
				want = PartiallyPublished
			default:
				want = FullyPublished
			}
			if got != want {
				t.Errorf("Classify(%q,%q) = %v, want %v", p, s, got, want)
			}
		}
	}
}

func TestClassifyIgnoresOrder(t *testing.T) {
	nodes := []lineage.Node{node("1", "1", "1"), node("2", "0", ""), node("3", "1", "0")}
	first := make([]Category, len(nodes))
	for i, n := range nodes {
		first[i] = Classify(n, FocusOn("1"))
	}

	reversed := slices.Clone(nodes)
	slices.Reverse(reversed)
	for i, n := range reversed {
		if got := Classify(n, FocusOn("1")); got != first[len(nodes)-1-i] {
			t.Errorf("Classify(%s) changed with order: %v", n.ID, got)
		}
	}
}

func TestOrders(t *testing.T) {
	if !slices.Equal(LegendOrder, []Category{Active, FullyPublished, PartiallyPublished, Unpublished}) {
		t.Errorf("LegendOrder = %v", LegendOrder)
	}
	// The palette swaps the last two entries relative to the legend.
	if !slices.Equal(PaletteOrder, []Category{Active, FullyPublished, Unpublished, PartiallyPublished}) {
		t.Errorf("PaletteOrder = %v", PaletteOrder)
	}
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		c     Category
		name  string
		color string
		key   string
	}{
		{Active, "active", "#2D8DF0", i18n.KeyStateActive},
		{FullyPublished, "fully-published", "#00C800", i18n.KeyState1},
		{PartiallyPublished, "partially-published", "#FF8F05", i18n.KeyState10},
		{Unpublished, "unpublished", "#999999", i18n.KeyState0},
	}
	for _, tt := range tests {
		if tt.c.String() != tt.name || tt.c.Color() != tt.color || tt.c.Key() != tt.key {
			t.Errorf("%d: got (%s, %s, %s)", tt.c, tt.c.String(), tt.c.Color(), tt.c.Key())
		}
		parsed, ok := Parse(tt.name)
		if !ok || parsed != tt.c {
			t.Errorf("Parse(%q) = %v, %v", tt.name, parsed, ok)
		}
	}

	if _, ok := Parse("nope"); ok {
		t.Error("Parse(nope) should fail")
	}
	if Category(42).String() != "unknown" {
		t.Error("out of range category should stringify as unknown")
	}
}

func TestLabel(t *testing.T) {
	loc := i18n.Map{i18n.KeyState10: "schedule off"}
	if got := PartiallyPublished.Label(loc); got != "schedule off" {
		t.Errorf("Label() = %q", got)
	}
}

func TestCount(t *testing.T) {
	nodes := []lineage.Node{
		node("1", "1", "1"),
		node("2", "0", ""),
		node("3", "1", "0"),
		node("4", "1", "1"),
	}
	got := Count(nodes, FocusOn("1"))
	want := map[Category]int{Active: 1, Unpublished: 1, PartiallyPublished: 1, FullyPublished: 1}
	for c, n := range want {
		if got[c] != n {
			t.Errorf("Count()[%v] = %d, want %d", c, got[c], n)
		}
	}
}

func TestWorkedExample(t *testing.T) {
	nodes := []lineage.Node{
		{ID: "1", WorkFlowPublishStatus: "1", SchedulePublishStatus: "1"},
		{ID: "2", WorkFlowPublishStatus: "0"},
	}
	if got := Classify(nodes[0], FocusOn("1")); got != Active {
		t.Errorf("node 1 = %v, want active", got)
	}
	if got := Classify(nodes[1], FocusOn("1")); got != Unpublished {
		t.Errorf("node 2 = %v, want unpublished", got)
	}
}
