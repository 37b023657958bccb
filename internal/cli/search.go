package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/pipeline"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		project string
		input   string
	)

	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "List workflows whose name contains a term",
		Example: `  kinship search orders
  kinship search --project etl --file lineage.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) == 1 {
				term = args[0]
			}
			return c.runSearch(cmd.Context(), input, project, term)
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", pipeline.DefaultProject, "project name")
	cmd.Flags().StringVar(&input, "file", "", "lineage file (overrides the configured source)")
	c.registerLineageCompletions(cmd, "file")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, input, project, term string) error {
	runner, err := c.newRunner(ctx, input, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	nodes, err := runner.Search(ctx, project, term)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		printInfo("No workflows match %q", term)
		return nil
	}

	fmt.Println(workflowTable(nodes, i18n.ForLocale(c.Config.Render.Locale)))
	printDetail("%d workflows", len(nodes))
	printNextStep("Render one", fmt.Sprintf("kinship render --project %s --ids %s --focus %s", project, nodes[0].ID, nodes[0].ID))
	return nil
}
