package cache

import (
	"slices"
	"strings"
)

// Key types, used as the key prefix and as the key_type metric label.
const (
	KeyTypeGraph    = "graph"
	KeyTypeOption   = "option"
	KeyTypeArtifact = "artifact"
)

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// GraphKey identifies the lineage subgraph queried for a set of workflows.
	GraphKey(project string, opts GraphKeyOpts) string
	// OptionKey identifies a renderer configuration built from a graph.
	OptionKey(graphHash string, opts OptionKeyOpts) string
	// ArtifactKey identifies an exported file rendered from a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts are the inputs that select a lineage subgraph.
type GraphKeyOpts struct {
	IDs []string `json:"ids"`
}

// OptionKeyOpts are the inputs that shape a renderer configuration.
type OptionKeyOpts struct {
	Focus      string `json:"focus"`
	ShowLabels bool   `json:"show_labels"`
	Locale     string `json:"locale"`
}

// ArtifactKeyOpts are the inputs that shape an exported artifact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Focus      string `json:"focus"`
	ShowLabels bool   `json:"show_labels"`
	Locale     string `json:"locale"`
}

// DefaultKeyer hashes stage inputs into keys of the form "<type>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey hashes the project and the id set. Id order and duplicates do
// not change the key.
func (DefaultKeyer) GraphKey(project string, opts GraphKeyOpts) string {
	ids := slices.Clone(opts.IDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return hashKey(KeyTypeGraph, project, ids)
}

// OptionKey hashes the graph hash and the option inputs.
func (DefaultKeyer) OptionKey(graphHash string, opts OptionKeyOpts) string {
	opts.Locale = strings.ToLower(opts.Locale)
	return hashKey(KeyTypeOption, graphHash, opts)
}

// ArtifactKey hashes the graph hash and the artifact inputs.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	opts.Locale = strings.ToLower(opts.Locale)
	return hashKey(KeyTypeArtifact, graphHash, opts)
}

var _ Keyer = DefaultKeyer{}
