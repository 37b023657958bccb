package lineage

import (
	"errors"
	"fmt"
	"slices"
)

// Status is a publish or schedule state code.
type Status string

// Known status codes. Other values are legal and preserved.
const (
	StatusOffline Status = "0"
	StatusOnline  Status = "1"
)

var (
	// ErrEmptyNodeID is returned by [Graph.Validate] for a node without an id.
	ErrEmptyNodeID = errors.New("node id must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.Validate] when two nodes share an id.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrUnknownEndpoint is returned by [Graph.Validate] for an edge that
	// references a node missing from the graph.
	ErrUnknownEndpoint = errors.New("edge references unknown node")
)

// Graph is a workflow lineage graph.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one workflow in a lineage graph.
type Node struct {
	ID                    string `json:"id" bson:"id"`
	Name                  string `json:"name" bson:"name"`
	WorkFlowPublishStatus Status `json:"workFlowPublishStatus" bson:"work_flow_publish_status"`
	SchedulePublishStatus Status `json:"schedulePublishStatus" bson:"schedule_publish_status"`
	Crontab               string `json:"crontab,omitempty" bson:"crontab,omitempty"`
	ScheduleStartTime     string `json:"scheduleStartTime,omitempty" bson:"schedule_start_time,omitempty"`
	ScheduleEndTime       string `json:"scheduleEndTime,omitempty" bson:"schedule_end_time,omitempty"`
}

// Edge is a dependency from Source to Target.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// Relation is an edge as persisted by the scheduler, keyed by workflow ids.
type Relation struct {
	SourceWorkFlowID string `json:"sourceWorkFlowId" bson:"source_work_flow_id"`
	TargetWorkFlowID string `json:"targetWorkFlowId" bson:"target_work_flow_id"`
}

// Edge converts the relation to its rendering form.
func (r Relation) Edge() Edge {
	return Edge{Source: r.SourceWorkFlowID, Target: r.TargetWorkFlowID}
}

// IsOnline reports whether the workflow definition is published.
func (n Node) IsOnline() bool { return n.WorkFlowPublishStatus == StatusOnline }

// IsScheduled reports whether the workflow schedule is published.
func (n Node) IsScheduled() bool { return n.SchedulePublishStatus == StatusOnline }

// NodeIDs returns the ids of all nodes in input order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Subgraph returns the nodes whose ids are listed and the edges between them.
// Node order follows g, not ids.
func (g Graph) Subgraph(ids []string) Graph {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, n := range g.Nodes {
		if keep[n.ID] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if keep[e.Source] && keep[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// Neighbors returns the ids directly connected to id in either direction,
// sorted and without duplicates.
func (g Graph) Neighbors(id string) []string {
	var out []string
	for _, e := range g.Edges {
		switch id {
		case e.Source:
			out = append(out, e.Target)
		case e.Target:
			out = append(out, e.Source)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Validate checks structural integrity: non-empty unique node ids and edges
// whose endpoints exist. Rendering never calls Validate; it is meant for
// loaders that accept untrusted documents.
func (g Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: %w", i, ErrEmptyNodeID)
		}
		if seen[n.ID] {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
		}
		seen[n.ID] = true
	}
	for _, e := range g.Edges {
		if !seen[e.Source] {
			return fmt.Errorf("edge %s→%s: source: %w", e.Source, e.Target, ErrUnknownEndpoint)
		}
		if !seen[e.Target] {
			return fmt.Errorf("edge %s→%s: target: %w", e.Source, e.Target, ErrUnknownEndpoint)
		}
	}
	return nil
}
