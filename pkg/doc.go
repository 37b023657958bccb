// Package pkg provides the core libraries for kinship workflow lineage views.
//
// # Overview
//
// Kinship turns the dependency relations between scheduler workflows into a
// graph a browser can draw: every workflow becomes a node coloured by its
// publish state, every relation a directed edge. The pkg directory is
// organized into four areas:
//
//  1. Domain: [lineage] graph types, [category] node classification, [i18n] labels
//  2. Rendering: [render/echarts] interactive option, [render/nodelink] DOT and SVG
//  3. Infrastructure: [source] lineage stores, [cache] backends, [observability] hooks
//  4. Orchestration: [pipeline] query → build → export, [server] HTTP API
//
// # Architecture
//
// The typical data flow:
//
//	Lineage store (JSON file or MongoDB)
//	         ↓
//	    [source] package (query the workflows around the requested ids)
//	         ↓
//	    [category] package (Active / FullyPublished / PartiallyPublished / Unpublished)
//	         ↓
//	    [render/echarts] package (force-layout graph option, tooltips, labels)
//	         ↓
//	    JSON option, DOT or SVG
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/kinship/pkg/category"
//	    "github.com/matzehuels/kinship/pkg/i18n"
//	    "github.com/matzehuels/kinship/pkg/lineage"
//	    "github.com/matzehuels/kinship/pkg/render/echarts"
//	)
//
//	g, _ := lineage.ReadGraphFile("lineage.json")
//	opt := echarts.BuildGraph(g, category.FocusOn("42"), true, i18n.ForLocale("zh"))
//	data, _ := opt.JSON()
//
// With a store and caching, use the [pipeline] runner, which the CLI and the
// [server] share:
//
//	src, _ := source.Open(ctx, source.Config{Kind: source.KindFile, Path: "lineage.json"})
//	runner := pipeline.NewRunner(src, cache.NewMemoryCache(), nil, logger)
//	res, _ := runner.Lineage(ctx, pipeline.Options{IDs: []string{"42"}, Focus: "42"})
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -short ./pkg/...             # Skip Graphviz rendering
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [lineage]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/lineage
// [category]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/category
// [i18n]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/i18n
// [render/echarts]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/render/echarts
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/render/nodelink
// [source]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/kinship/pkg/server
package pkg
