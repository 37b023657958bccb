package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	project    string
	ids        string
	focus      string
	showLabels bool
	locale     string
	formats    string
	output     string
	noCache    bool
	refresh    bool
	pick       bool
	search     string
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [lineage.json]",
		Short: "Render the lineage around workflows",
		Long: `Render the upstream and downstream lineage of the given workflows.

The json format is the interactive graph configuration served to browsers;
dot and svg are static node-link diagrams. Without a file argument the
configured lineage source is used.`,
		Example: `  kinship render lineage.json --ids 42 --focus 42
  kinship render --project etl --ids 1,2 --format json,svg -o etl
  kinship render lineage.json --pick --search orders`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("labels") {
				opts.showLabels = c.Config.Render.ShowLabels
			}
			if !cmd.Flags().Changed("locale") {
				opts.locale = c.Config.Render.Locale
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.project, "project", "p", pipeline.DefaultProject, "project name")
	cmd.Flags().StringVar(&opts.ids, "ids", "", "workflow ids (comma-separated)")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "workflow highlighted as the current selection")
	cmd.Flags().BoolVar(&opts.showLabels, "labels", false, "show node labels")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "label language: en (default), zh")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format, - for stdout) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results and rebuild")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick the focus workflow interactively")
	cmd.Flags().StringVar(&opts.search, "search", "", "name filter for --pick")
	c.registerLineageCompletions(cmd, "")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, input, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ids := pipeline.ParseIDs(opts.ids)
	focus := opts.focus
	if opts.pick {
		picked, err := c.pickWorkflow(ctx, runner, opts.project, opts.search)
		if err != nil {
			return err
		}
		if picked == "" {
			printInfo("Nothing selected")
			return nil
		}
		focus = picked
		if !slices.Contains(ids, picked) {
			ids = append(ids, picked)
		}
	}
	if len(ids) == 0 && focus != "" {
		ids = []string{focus}
	}

	popts := pipeline.Options{
		Project:    opts.project,
		IDs:        ids,
		Focus:      focus,
		ShowLabels: opts.showLabels,
		Locale:     opts.locale,
		Formats:    parseFormats(opts.formats),
		Refresh:    opts.refresh,
		Logger:     logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.output == "-" && len(popts.Formats) > 1 {
		return fmt.Errorf("--output - needs exactly one format, got %d", len(popts.Formats))
	}

	prog := newProgress(logger)
	res, err := runner.Lineage(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built lineage for %s", popts.String()))

	if opts.output == "-" {
		_, err := os.Stdout.Write(res.Artifacts[popts.Formats[0]])
		return err
	}

	base := basePath(opts.output, input)
	for _, format := range popts.Formats {
		path := base + "." + format
		if len(popts.Formats) == 1 && opts.output != "" && filepath.Ext(opts.output) != "" {
			path = opts.output
		}
		if err := writeOutput(path, res.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.Hit())
	printLegend(res.Counts, popts.Localizer())
	return nil
}

// parseFormats parses the --format flag. Empty means the pipeline default.
func parseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// basePath derives the base output path from the output and input file paths.
// Known format extensions are stripped from output. Without output the input
// stem gets a ".render" suffix so a json render never overwrites its input.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return "lineage"
		}
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".render"
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
