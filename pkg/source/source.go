// Package source loads workflow lineage from a backing store.
//
// A [Source] answers the three lineage queries a scheduler exposes: search
// workflows by name, load the lineage around a set of workflows, and list
// the relations touching one workflow. [FileSource] serves a JSON document
// from disk; [MongoSource] queries MongoDB.
package source

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/kinship/pkg/lineage"
)

// DefaultProject is the project a bare graph document is registered under.
const DefaultProject = "default"

// Sentinel errors.
var (
	// ErrNotFound is returned when none of the requested workflows exist.
	ErrNotFound = errors.New("workflow not found")

	// ErrProjectNotFound is returned by sources that know their project list.
	ErrProjectNotFound = errors.New("project not found")
)

// Source is a read-only lineage store.
type Source interface {
	// QueryByName returns the workflows of project whose name contains
	// search, case-insensitively. An empty search matches every workflow.
	QueryByName(ctx context.Context, project, search string) ([]lineage.Node, error)

	// QueryByIDs returns the requested workflows, every relation touching
	// one of them, and the workflows at the other end of those relations.
	// Unknown ids are skipped; if none exist the error wraps ErrNotFound.
	QueryByIDs(ctx context.Context, project string, ids []string) (lineage.Graph, error)

	// QuerySourceTarget returns the relations where id is the source or
	// the target.
	QuerySourceTarget(ctx context.Context, project, id string) ([]lineage.Edge, error)

	// Close releases backend resources.
	Close() error
}

// Kind names a source backend.
type Kind string

// Supported backends.
const (
	KindFile  Kind = "file"
	KindMongo Kind = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Kind Kind
	// Path is the lineage document for KindFile.
	Path string
	// URI, Database and the collection names configure KindMongo.
	URI         string
	Database    string
	Collections Collections
}

// Open creates the source described by cfg.
func Open(ctx context.Context, cfg Config) (Source, error) {
	switch cfg.Kind {
	case KindFile, "":
		return OpenFile(cfg.Path)
	case KindMongo:
		return NewMongoSource(ctx, MongoConfig{
			URI:         cfg.URI,
			Database:    cfg.Database,
			Collections: cfg.Collections,
		})
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// expand computes the QueryByIDs result over an in-memory graph.
func expand(g lineage.Graph, ids []string) (lineage.Graph, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var edges []lineage.Edge
	keep := make(map[string]bool)
	for _, n := range g.Nodes {
		if want[n.ID] {
			keep[n.ID] = true
		}
	}
	if len(keep) == 0 {
		return lineage.Graph{}, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(ids, ","))
	}
	for _, e := range g.Edges {
		if keep[e.Source] || keep[e.Target] {
			edges = append(edges, e)
		}
	}
	for _, e := range edges {
		keep[e.Source] = true
		keep[e.Target] = true
	}

	out := lineage.Graph{Nodes: []lineage.Node{}, Edges: []lineage.Edge{}}
	for _, n := range g.Nodes {
		if keep[n.ID] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	// Relations to workflows missing from the store are dropped so every
	// edge endpoint is a node.
	known := make(map[string]bool, len(out.Nodes))
	for _, n := range out.Nodes {
		known[n.ID] = true
	}
	for _, e := range edges {
		if known[e.Source] && known[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	sortEdges(out.Edges)
	return out, nil
}

func matchName(name, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

func sortEdges(edges []lineage.Edge) {
	slices.SortFunc(edges, func(a, b lineage.Edge) int {
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(a.Target, b.Target)
	})
}

func dedupe(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
