// Package pipeline turns lineage queries into renderable outputs.
//
// The pipeline has three stages, each cached independently:
//
//  1. Graph: load the lineage around the requested workflows from a [source.Source]
//  2. Option: classify nodes and build the interactive renderer configuration
//  3. Artifacts: export static files (DOT, SVG)
//
// The CLI and the HTTP server both drive the pipeline through a [Runner], so
// they share cache keys and behave identically.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, cache, nil, logger)
//	res, err := runner.Lineage(ctx, pipeline.Options{
//	    Project: "etl",
//	    IDs:     []string{"42"},
//	    Focus:   "42",
//	    Locale:  "zh",
//	})
//	w.Write(res.JSON)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/cache"
	"github.com/matzehuels/kinship/pkg/category"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/lineage"
	"github.com/matzehuels/kinship/pkg/render/echarts"
	"github.com/matzehuels/kinship/pkg/source"
)

// DefaultProject is the project used when Options.Project is empty.
const DefaultProject = source.DefaultProject

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Options configures one lineage build.
type Options struct {
	Project string   `json:"project"`
	IDs     []string `json:"ids"`
	// Focus is the workflow highlighted as the current selection. Empty
	// means no focus.
	Focus      string   `json:"focus,omitempty"`
	ShowLabels bool     `json:"show_labels,omitempty"`
	Locale     string   `json:"locale,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	// Refresh bypasses cached graphs and options. Fresh results are still
	// written back.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the lineage subgraph returned by the source.
	Graph lineage.Graph

	// GraphHash is the content hash of Graph.
	GraphHash string

	// Option is the renderer configuration built from Graph.
	Option echarts.Option

	// JSON is the resolved Option as served to browsers.
	JSON []byte

	// Artifacts contains exported files keyed by format.
	Artifacts map[string][]byte

	// Counts tallies nodes per category.
	Counts map[category.Category]int

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	QueryTime  time.Duration
	BuildTime  time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit    bool // Whether the graph came from cache
	OptionHit   bool // Whether the option JSON came from cache
	ArtifactHit bool // Whether every requested artifact came from cache
}

// Hit reports whether the served configuration came from cache.
func (c CacheInfo) Hit() bool { return c.OptionHit }

// CountsByName returns Counts keyed by category name.
func (r *Result) CountsByName() map[string]int {
	out := make(map[string]int, len(r.Counts))
	for c, n := range r.Counts {
		out[c.String()] = n
	}
	return out
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return kerrors.New(kerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLocale checks that a locale resolves to a built-in translation.
func ValidateLocale(locale string) error {
	if !i18n.IsSupported(locale) {
		return kerrors.New(kerrors.ErrCodeInvalidLocale, "unsupported locale: %q", locale)
	}
	return nil
}

// ParseIDs splits a comma separated id list, trimming blanks.
func ParseIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Project == "" {
		o.Project = DefaultProject
	}
	if err := kerrors.ValidateProject(o.Project); err != nil {
		return err
	}
	ids := slices.Clone(o.IDs)
	slices.Sort(ids)
	o.IDs = slices.Compact(ids)
	if err := kerrors.ValidateWorkflowIDs(o.IDs); err != nil {
		return err
	}
	if o.Focus != "" {
		if err := kerrors.ValidateWorkflowID(o.Focus); err != nil {
			return err
		}
	}
	o.Locale = strings.TrimSpace(o.Locale)
	if err := ValidateLocale(o.Locale); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// FocusSpec returns the classification focus.
func (o *Options) FocusSpec() category.Focus {
	return category.FocusOn(o.Focus)
}

// Localizer returns the localizer for o.Locale.
func (o *Options) Localizer() i18n.Localizer {
	return i18n.ForLocale(o.Locale)
}

// GraphKeyOpts returns cache key options for the graph stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{IDs: o.IDs}
}

// OptionKeyOpts returns cache key options for the option stage. The locale
// is normalized to the matched translation so "zh-CN" and "zh" share entries.
func (o *Options) OptionKeyOpts() cache.OptionKeyOpts {
	return cache.OptionKeyOpts{
		Focus:      o.Focus,
		ShowLabels: o.ShowLabels,
		Locale:     matchedLocale(o.Locale),
	}
}

// ArtifactKeyOpts returns cache key options for one exported format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Focus:      o.Focus,
		ShowLabels: o.ShowLabels,
		Locale:     matchedLocale(o.Locale),
	}
}

func matchedLocale(locale string) string {
	return i18n.Match(locale).String()
}

func (o *Options) wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

func (o *Options) String() string {
	return fmt.Sprintf("%s/%s", o.Project, strings.Join(o.IDs, ","))
}
