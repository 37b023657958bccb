package pipeline

import (
	"context"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/lineage"
	"github.com/matzehuels/kinship/pkg/render/nodelink"
)

// Export renders g in one static format without caching.
func Export(ctx context.Context, g lineage.Graph, format string, opts Options) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(g, opts.FocusSpec(), nodelink.Options{
		ShowLabels: opts.ShowLabels,
		Localizer:  opts.Localizer(),
	})

	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	default:
		return nil, kerrors.New(kerrors.ErrCodeUnsupported, "format %q cannot be exported", format)
	}
}
