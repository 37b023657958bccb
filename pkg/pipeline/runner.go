package pipeline

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/cache"
	"github.com/matzehuels/kinship/pkg/category"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/lineage"
	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/render/echarts"
	"github.com/matzehuels/kinship/pkg/source"
)

// Runner executes the pipeline against a lineage source with caching.
//
// The Runner keeps no per-request state. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Source source.Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(src source.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Search lists the workflows of project whose name contains term.
func (r *Runner) Search(ctx context.Context, project, term string) ([]lineage.Node, error) {
	if project == "" {
		project = DefaultProject
	}
	if err := kerrors.ValidateProject(project); err != nil {
		return nil, err
	}
	if err := kerrors.ValidateSearch(term); err != nil {
		return nil, err
	}

	start := time.Now()
	nodes, err := r.Source.QueryByName(ctx, project, term)
	observability.Build().OnSourceQuery(ctx, "query_by_name", time.Since(start), err)
	if err != nil {
		return nil, sourceError(err, project)
	}
	r.Logger.Debug("searched workflows", "project", project, "term", term, "matches", len(nodes))
	return nodes, nil
}

// Relations lists the relations touching one workflow.
func (r *Runner) Relations(ctx context.Context, project, id string) ([]lineage.Edge, error) {
	if project == "" {
		project = DefaultProject
	}
	if err := kerrors.ValidateProject(project); err != nil {
		return nil, err
	}
	if err := kerrors.ValidateWorkflowID(id); err != nil {
		return nil, err
	}

	start := time.Now()
	edges, err := r.Source.QuerySourceTarget(ctx, project, id)
	observability.Build().OnSourceQuery(ctx, "query_source_target", time.Since(start), err)
	if err != nil {
		return nil, sourceError(err, project)
	}
	return edges, nil
}

// Lineage runs the complete graph → option → artifacts pipeline.
func (r *Runner) Lineage(ctx context.Context, opts Options) (res *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Build().OnBuildStart(ctx, opts.Project, len(opts.IDs))
	defer func() {
		var counts map[string]int
		hit := false
		if res != nil {
			counts = res.CountsByName()
			hit = res.CacheInfo.Hit()
		}
		observability.Build().OnBuildComplete(ctx, opts.Project, counts, time.Since(start), hit, err)
	}()

	res = &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Graph
	queryStart := time.Now()
	g, graphHit, err := r.GraphWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Graph = g
	res.Stats.QueryTime = time.Since(queryStart)
	res.Stats.NodeCount = len(g.Nodes)
	res.Stats.EdgeCount = len(g.Edges)
	res.CacheInfo.GraphHit = graphHit

	data, err := lineage.MarshalGraph(g)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode graph")
	}
	res.GraphHash = cache.Hash(data)

	opts.Logger.Info("loaded lineage",
		"project", opts.Project,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"cached", graphHit,
		"duration", res.Stats.QueryTime)

	// Stage 2: Option
	buildStart := time.Now()
	res.Counts = category.Count(g.Nodes, opts.FocusSpec())
	res.Option = echarts.BuildGraph(g, opts.FocusSpec(), opts.ShowLabels, opts.Localizer())
	res.JSON, res.CacheInfo.OptionHit, err = r.optionJSON(ctx, res.GraphHash, res.Option, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.BuildTime = time.Since(buildStart)

	opts.Logger.Debug("built option",
		"bytes", len(res.JSON),
		"cached", res.CacheInfo.OptionHit,
		"duration", res.Stats.BuildTime)

	// Stage 3: Artifacts
	exportStart := time.Now()
	artifacts, artifactHit, err := r.ExportWithCacheInfo(ctx, g, res.GraphHash, opts)
	if err != nil {
		return nil, err
	}
	for format, data := range artifacts {
		res.Artifacts[format] = data
	}
	if opts.wants(FormatJSON) {
		res.Artifacts[FormatJSON] = res.JSON
	}
	res.CacheInfo.ArtifactHit = artifactHit
	res.Stats.ExportTime = time.Since(exportStart)

	return res, nil
}

// GraphWithCacheInfo loads the lineage subgraph with caching and reports
// whether it came from cache.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, opts Options) (lineage.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return lineage.Graph{}, false, err
	}

	key := r.Keyer.GraphKey(opts.Project, opts.GraphKeyOpts())
	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, cache.KeyTypeGraph, key); ok {
			g, err := lineage.ReadGraph(bytes.NewReader(data))
			if err == nil {
				return g, true, nil
			}
			opts.Logger.Warn("discarding unreadable cached graph", "error", err)
		}
	}

	start := time.Now()
	g, err := r.Source.QueryByIDs(ctx, opts.Project, opts.IDs)
	observability.Build().OnSourceQuery(ctx, "query_by_ids", time.Since(start), err)
	if err != nil {
		return lineage.Graph{}, false, sourceError(err, opts.Project)
	}

	if data, err := lineage.MarshalGraph(g); err == nil {
		r.cacheSet(ctx, cache.KeyTypeGraph, key, data, cache.TTLGraph, opts.Logger)
	}
	return g, false, nil
}

// Graph is a convenience wrapper that discards the cache hit info.
func (r *Runner) Graph(ctx context.Context, opts Options) (lineage.Graph, error) {
	g, _, err := r.GraphWithCacheInfo(ctx, opts)
	return g, err
}

func (r *Runner) optionJSON(ctx context.Context, graphHash string, opt echarts.Option, opts Options) ([]byte, bool, error) {
	key := r.Keyer.OptionKey(graphHash, opts.OptionKeyOpts())
	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, cache.KeyTypeOption, key); ok {
			return data, true, nil
		}
	}

	data, err := opt.JSON()
	if err != nil {
		return nil, false, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode option")
	}
	r.cacheSet(ctx, cache.KeyTypeOption, key, data, cache.TTLOption, opts.Logger)
	return data, false, nil
}

// ExportWithCacheInfo renders the static formats requested in opts and
// reports whether all of them came from cache. The json format is not an
// export and is skipped here.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g lineage.Graph, graphHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	out := make(map[string][]byte)
	allHit := true
	for _, format := range opts.Formats {
		if format == FormatJSON {
			continue
		}
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, ok := r.cacheGet(ctx, cache.KeyTypeArtifact, key); ok {
				out[format] = data
				continue
			}
		}
		allHit = false

		data, err := Export(ctx, g, format, opts)
		if err != nil {
			return nil, false, err
		}
		out[format] = data
		r.cacheSet(ctx, cache.KeyTypeArtifact, key, data, cache.TTLArtifact, opts.Logger)
	}
	return out, allHit && len(out) > 0, nil
}

// Close releases the source and the cache.
func (r *Runner) Close() error {
	var errs []error
	if r.Source != nil {
		errs = append(errs, r.Source.Close())
	}
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	return errors.Join(errs...)
}

func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key_type", keyType, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

// cacheSet writes through, logging failures; a broken cache never fails a build.
func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "key_type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// sourceError maps source failures to coded errors.
func sourceError(err error, project string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, source.ErrNotFound):
		return kerrors.Wrap(kerrors.ErrCodeWorkflowNotFound, err, "no such workflow in project %s", project)
	case errors.Is(err, source.ErrProjectNotFound):
		return kerrors.Wrap(kerrors.ErrCodeNotFound, err, "no such project: %s", project)
	default:
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "query lineage for project %s", project)
	}
}
