// Package category classifies lineage nodes into their visual categories.
//
// Every node falls into exactly one of four categories, decided by an ordered
// rule list over (is focus, publish status, schedule status). The first rule
// that matches wins:
//
//  1. the node is the focus workflow         → [Active]
//  2. the workflow is offline ("0")          → [Unpublished]
//  3. online but schedule offline ("1","0")  → [PartiallyPublished]
//  4. anything else                          → [FullyPublished]
//
// Rule order matters: the focus check must run first so the inspected workflow
// is highlighted even when it is also fully published. Unknown status codes
// reach rule 4.
package category

import (
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
)

// Category is a visual node category.
type Category int

const (
	// Active marks the workflow being inspected.
	Active Category = iota
	// FullyPublished marks a workflow that is online with an online schedule.
	FullyPublished
	// PartiallyPublished marks an online workflow whose schedule is offline.
	PartiallyPublished
	// Unpublished marks a workflow that is not online.
	Unpublished
)

// LegendOrder is the order of legend entries.
var LegendOrder = []Category{Active, FullyPublished, PartiallyPublished, Unpublished}

// PaletteOrder is the order of the renderer's color array. It is independent
// of LegendOrder; node colours do not depend on it because each series
// category pins its own itemStyle color.
var PaletteOrder = []Category{Active, FullyPublished, Unpublished, PartiallyPublished}

type info struct {
	name  string
	key   string
	color string
}

var table = [...]info{
	Active:             {"active", i18n.KeyStateActive, "#2D8DF0"},
	FullyPublished:     {"fully-published", i18n.KeyState1, "#00C800"},
	PartiallyPublished: {"partially-published", i18n.KeyState10, "#FF8F05"},
	Unpublished:        {"unpublished", i18n.KeyState0, "#999999"},
}

// String returns the stable machine name, e.g. "partially-published".
func (c Category) String() string {
	if !c.valid() {
		return "unknown"
	}
	return table[c].name
}

// Color returns the hex display color.
func (c Category) Color() string {
	if !c.valid() {
		return table[FullyPublished].color
	}
	return table[c].color
}

// Key returns the localization key for the category label.
func (c Category) Key() string {
	if !c.valid() {
		return table[FullyPublished].key
	}
	return table[c].key
}

// Label returns the localized category label.
func (c Category) Label(l i18n.Localizer) string {
	return l.Text(c.Key())
}

func (c Category) valid() bool { return c >= Active && c <= Unpublished }

// Parse returns the category with the given machine name.
func Parse(name string) (Category, bool) {
	for c, in := range table {
		if in.name == name {
			return Category(c), true
		}
	}
	return 0, false
}

// Focus identifies the workflow under inspection. The zero value means no focus.
type Focus struct {
	ID  string
	Set bool
}

// FocusOn returns a focus on id. An empty id yields no focus.
func FocusOn(id string) Focus {
	return Focus{ID: id, Set: id != ""}
}

// NoFocus is the absent focus.
var NoFocus = Focus{}

// Matches reports whether the focus is set and names id.
func (f Focus) Matches(id string) bool {
	return f.Set && f.ID == id
}

type rule struct {
	match func(n lineage.Node, focus Focus) bool
	cat   Category
}

// rules is evaluated top to bottom; see the package doc.
var rules = []rule{
	{func(n lineage.Node, f Focus) bool { return f.Matches(n.ID) }, Active},
	{func(n lineage.Node, _ Focus) bool { return n.WorkFlowPublishStatus == lineage.StatusOffline }, Unpublished},
	{func(n lineage.Node, _ Focus) bool {
		return n.WorkFlowPublishStatus == lineage.StatusOnline && n.SchedulePublishStatus == lineage.StatusOffline
	}, PartiallyPublished},
}

// Classify returns the category of n relative to focus. It never fails.
func Classify(n lineage.Node, focus Focus) Category {
	for _, r := range rules {
		if r.match(n, focus) {
			return r.cat
		}
	}
	return FullyPublished
}

// Count classifies every node and tallies the categories.
func Count(nodes []lineage.Node, focus Focus) map[Category]int {
	out := make(map[Category]int, len(LegendOrder))
	for _, n := range nodes {
		out[Classify(n, focus)]++
	}
	return out
}
