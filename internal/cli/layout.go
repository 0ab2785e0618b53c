package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/pipeline"
)

// layoutCommand creates the layout command for computing view frames.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		format  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [topology.json]",
		Short: "Compute the drawn frame of a topology document",
		Long: `Compute the drawn frame of a topology document.

The layout command draws one view of the document (a partition, a color mode
and an ordered list of expansions) and writes its frame: every shown node with
its position and color, every shown edge with its style. The frame can be
rendered later with 'visualize'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatJSON && format != pipeline.FormatYAML {
				return fmt.Errorf("unsupported layout format %q: want json or yaml", format)
			}
			opts.Path = args[0]
			return c.runLayout(cmd.Context(), opts, output, format == pipeline.FormatYAML, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatJSON, "frame format: json, yaml")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	addViewFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, yamlOut, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, "Computing layout...")
	spinner.Start()

	l, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return fmt.Errorf("load %s: %w", opts.Path, err)
	}
	frame, hit, err := runner.LayoutWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	ext := pipeline.FormatJSON
	if yamlOut {
		ext = pipeline.FormatYAML
	}
	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.Path) + ".layout." + ext
	}
	if err := graph.WriteLayoutFile(frame, outputPath, yamlOut); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(frame.Nodes), len(frame.Edges), hit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
