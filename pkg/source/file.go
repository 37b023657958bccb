package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/kinship/pkg/lineage"
)

// FileSource serves lineage from an in-memory document, usually loaded from
// a JSON file. It is safe for concurrent use; the document is never mutated.
type FileSource struct {
	projects map[string]lineage.Graph
}

// document is the on-disk layout:
//
//	{"projects": {"etl": {"nodes": [...], "edges": [...]}}}
//
// A bare graph ({"nodes": ..., "edges": ...}) is also accepted and served as
// DefaultProject.
type document struct {
	Projects map[string]lineage.Graph `json:"projects"`
	lineage.Graph
}

// OpenFile loads a lineage document from path.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lineage %s: %w", path, err)
	}
	defer f.Close()
	s, err := ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read lineage %s: %w", path, err)
	}
	return s, nil
}

// ReadFile decodes a lineage document from r. Every project graph is validated.
func ReadFile(r io.Reader) (*FileSource, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	projects := doc.Projects
	if projects == nil {
		projects = map[string]lineage.Graph{}
	}
	if len(doc.Nodes) > 0 || len(doc.Edges) > 0 {
		if _, dup := projects[DefaultProject]; dup {
			return nil, fmt.Errorf("top-level graph conflicts with project %q", DefaultProject)
		}
		projects[DefaultProject] = doc.Graph
	}
	for name, g := range projects {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("project %s: %w", name, err)
		}
	}
	return &FileSource{projects: projects}, nil
}

// NewFileSource serves the given graphs. The map is not copied.
func NewFileSource(projects map[string]lineage.Graph) *FileSource {
	if projects == nil {
		projects = map[string]lineage.Graph{}
	}
	return &FileSource{projects: projects}
}

// Projects returns the project names, sorted.
func (s *FileSource) Projects() []string {
	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Project returns the full graph of one project.
func (s *FileSource) Project(name string) (lineage.Graph, error) {
	g, ok := s.projects[name]
	if !ok {
		return lineage.Graph{}, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return g, nil
}

// QueryByName implements Source.
func (s *FileSource) QueryByName(ctx context.Context, project, search string) ([]lineage.Node, error) {
	g, err := s.Project(project)
	if err != nil {
		return nil, err
	}
	out := []lineage.Node{}
	for _, n := range g.Nodes {
		if matchName(n.Name, search) {
			out = append(out, n)
		}
	}
	return out, nil
}

// QueryByIDs implements Source.
func (s *FileSource) QueryByIDs(ctx context.Context, project string, ids []string) (lineage.Graph, error) {
	g, err := s.Project(project)
	if err != nil {
		return lineage.Graph{}, err
	}
	return expand(g, ids)
}

// QuerySourceTarget implements Source.
func (s *FileSource) QuerySourceTarget(ctx context.Context, project, id string) ([]lineage.Edge, error) {
	g, err := s.Project(project)
	if err != nil {
		return nil, err
	}
	out := []lineage.Edge{}
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out, nil
}

// Close does nothing.
func (s *FileSource) Close() error { return nil }

var _ Source = (*FileSource)(nil)
