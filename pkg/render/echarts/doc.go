// Package echarts builds force-directed graph configurations for lineage views.
//
// # Overview
//
// [Build] turns a lineage node list, an edge list, an optional focus workflow
// and a label toggle into an [Option]: the object an ECharts `graph` series
// consumes. Each node is classified with [category.Classify] and decorated
// with its localized category label and highlight color; the option also
// carries the legend, palette, tooltip and label formatters, and the fixed
// force-layout parameters.
//
// # Usage
//
//	opt := echarts.Build(g.Nodes, g.Edges, category.FocusOn("42"), true, i18n.ForLocale("zh"))
//	data, err := opt.JSON()
//
// Formatters are Go closures and are not serialized. [Option.Resolve]
// evaluates them once per node and stores the results on each data item, so
// the JSON produced by [Option.JSON] renders the same tooltips and labels in a
// browser without any script.
//
// # Purity
//
// Build performs no I/O and keeps no state between calls. Localized strings
// are snapshotted when Build runs, so formatters never call back into the
// [i18n.Localizer] and can be invoked any number of times from any goroutine.
package echarts
