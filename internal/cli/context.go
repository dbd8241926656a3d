package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/pixel/internal/domain"
	"github.com/mrz1836/pixel/internal/tui"
)

// AddContextCommand adds the context command to the root command.
func AddContextCommand(root *cobra.Command, flags *GlobalFlags, env *Env) {
	var directory string

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the branches last captured for each group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showContext(cmd.Context(), env, flags, directory)
		},
	}

	cmd.Flags().StringVarP(&directory, "directory", "d", ".", "project directory containing docker-compose.yml")
	root.AddCommand(cmd)
}

func showContext(ctx context.Context, env *Env, flags *GlobalFlags, directory string) error {
	a, err := newApp(ctx, env, directory, flags.ConfigFile)
	if err != nil {
		return err
	}

	rc, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	if flags.Format == OutputJSON {
		return tui.NewOutput(env.Stdout, tui.FormatJSON).JSON(rc)
	}

	_, err = io.WriteString(env.Stdout, tui.RenderMarkdown(contextMarkdown(rc)))
	return err
}

// contextMarkdown renders the run context as a markdown document, one
// section per group in key order.
func contextMarkdown(rc domain.RunContext) string {
	var sb strings.Builder
	sb.WriteString("# Run context\n\n")

	if len(rc) == 0 {
		sb.WriteString("No runs recorded yet. Run `pixel reference` to capture a baseline.\n")
		return sb.String()
	}

	for _, key := range slices.Sorted(maps.Keys(rc)) {
		entry := rc[key]
		fmt.Fprintf(&sb, "## %s\n\n", tui.Title(key))
		fmt.Fprintf(&sb, "- **Reference:** %s\n", codeOrNone(entry.Reference))
		fmt.Fprintf(&sb, "- **Test:** %s\n", codeOrNone(entry.Test))
		if desc := strings.TrimSpace(entry.Description); desc != "" {
			fmt.Fprintf(&sb, "- **Details:** %s\n", desc)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func codeOrNone(identifier string) string {
	if identifier == "" {
		return "_none_"
	}
	return "`" + identifier + "`"
}
