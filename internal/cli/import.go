package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/source"
)

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "import <lineage.json>",
		Short: "Load a lineage file into the configured MongoDB source",
		Long: `Upsert every workflow and relation of a lineage file into MongoDB.

Requires [source] kind = "mongo" in the config file. With --project only that
project is imported; otherwise every project in the file is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], project)
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "import only this project")
	c.registerLineageCompletions(cmd, "")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, path, project string) error {
	logger := loggerFromContext(ctx)

	cfg := c.Config.sourceConfig()
	if cfg.Kind != source.KindMongo {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "import needs source.kind = mongo, got %q", cfg.Kind)
	}

	file, err := source.OpenFile(path)
	if err != nil {
		return err
	}
	projects := file.Projects()
	if project != "" {
		projects = []string{project}
	}

	spinner := newSpinner(ctx, os.Stderr, "Connecting to MongoDB...")
	spinner.Start()
	dst, err := source.NewMongoSource(ctx, source.MongoConfig{
		URI:         cfg.URI,
		Database:    cfg.Database,
		Collections: cfg.Collections,
	})
	if err != nil {
		spinner.StopWithError("Could not connect to MongoDB")
		return err
	}
	spinner.StopWithSuccess("Connected to MongoDB")
	defer dst.Close()

	if err := dst.EnsureIndexes(ctx); err != nil {
		return err
	}

	for _, name := range projects {
		g, err := file.Project(name)
		if err != nil {
			return err
		}
		prog := newProgress(logger)
		spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Importing %s...", name))
		spinner.Start()
		err = dst.Import(ctx, name, g)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("project %s: %w", name, err)
		}
		prog.done(fmt.Sprintf("Imported %s", name))
		printSuccess("%s: %d workflows, %d relations", name, len(g.Nodes), len(g.Edges))
	}
	return nil
}
