package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/i18n"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/source"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kinship.

  $ source <(kinship completion bash)
  $ kinship completion zsh > "${fpath[1]}/_kinship"
  $ kinship completion fish > ~/.config/fish/completions/kinship.fish
  PS> kinship completion powershell | Out-String | Invoke-Expression

Project names complete from the lineage file given on the command line, or
from the configured file source.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// registerLineageCompletions wires dynamic completion for the flags shared by
// commands that read lineage.
func (c *CLI) registerLineageCompletions(cmd *cobra.Command, fileFlag string) {
	_ = cmd.RegisterFlagCompletionFunc("project", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		input := ""
		if fileFlag != "" {
			input, _ = cmd.Flags().GetString(fileFlag)
		} else if len(args) > 0 {
			input = args[0]
		}
		return c.projectNames(input, toComplete), cobra.ShellCompDirectiveNoFileComp
	})
	if cmd.Flags().Lookup("format") != nil {
		_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	}
	if cmd.Flags().Lookup("locale") != nil {
		_ = cmd.RegisterFlagCompletionFunc("locale", completeLocales)
	}
}

// projectNames lists projects of a file source. Mongo sources are not
// queried from the shell.
func (c *CLI) projectNames(input, prefix string) []string {
	path := input
	if path == "" {
		cfg := c.Config
		if cfg == nil {
			var err error
			if cfg, err = LoadConfig(c.configPath); err != nil {
				return nil
			}
		}
		sc := cfg.sourceConfig()
		if sc.Kind != source.KindFile {
			return nil
		}
		path = sc.Path
	}
	src, err := source.OpenFile(path)
	if err != nil {
		return nil
	}
	return filterPrefix(src.Projects(), prefix)
}

// completeFormats completes comma separated format lists, offering only
// formats not already listed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, last = toComplete[:i+1], toComplete[i+1:]
	}
	have := parseFormats(done)

	var out []string
	for _, f := range []string{pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatSVG} {
		if !slices.Contains(have, f) && strings.HasPrefix(f, last) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func completeLocales(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(i18n.Supported))
	for i, tag := range i18n.Supported {
		names[i] = tag.String()
	}
	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}
