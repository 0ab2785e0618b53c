package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netdraw/pkg/color"
	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/search"
	"github.com/matzehuels/netdraw/pkg/view"
)

// describeCommand creates the describe command, which prints the overview of
// one view of a document.
func (c *CLI) describeCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "describe [topology.json]",
		Short: "Describe the shown records of a topology view",
		Long: `Describe the shown records of a topology view.

Prints the node, edge, host and switch counts of the drawn view together with
the document's partitions, the hwloc topologies in use and the color modes
the document supports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			s, err := c.openView(cmd.Context(), opts, noCache)
			if err != nil {
				return err
			}
			return writeDescription(cmd.OutOrStdout(), s, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the description as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addViewFlags(cmd, &opts)

	return cmd
}

// loadDocument decodes the document of opts through the cache.
func (c *CLI) loadDocument(ctx context.Context, opts pipeline.Options, noCache bool) (*pipeline.Runner, *pipeline.Loaded, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	opts.Logger = c.Logger
	l, err := runner.Load(ctx, opts)
	if err != nil {
		runner.Close()
		return nil, nil, fmt.Errorf("load %s: %w", opts.Path, err)
	}
	return runner, l, nil
}

// openView loads the document of opts and draws the requested view.
func (c *CLI) openView(ctx context.Context, opts pipeline.Options, noCache bool) (*view.GraphSession, error) {
	prog := newProgress(c.Logger)
	runner, l, err := c.loadDocument(ctx, opts, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	s, err := runner.Session(l, opts)
	if err != nil {
		return nil, err
	}
	prog.done("drew view", "nodes", len(s.ShownNodes()), "edges", len(s.ShownEdges()))
	return s, nil
}

type descriptionOutput struct {
	search.Description
	ColorModes []color.Mode `json:"color_modes"`
}

func writeDescription(w io.Writer, s *view.GraphSession, asJSON bool) error {
	g := s.Graph()
	d := search.Describe(g, s.ShownNodeIndices(), s.ShownEdgeIndices())
	modes := color.Modes(g)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(descriptionOutput{Description: d, ColorModes: modes})
	}

	fmt.Fprintln(w, StyleTitle.Render("Stats"))
	writeKeyValue(w, "nodes", strconv.Itoa(d.Nodes))
	writeKeyValue(w, "edges", strconv.Itoa(d.Edges))
	writeKeyValue(w, "hosts", strconv.Itoa(d.Hosts))
	writeKeyValue(w, "switches", strconv.Itoa(d.Switches))
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(d.Partitions)+1)
	for _, opt := range view.PartitionOptions(g) {
		mark := ""
		if opt.Value == s.Partition() {
			mark = iconSuccess
		}
		rows = append(rows, []string{strconv.Itoa(opt.Value), opt.Label, mark})
	}
	fmt.Fprintln(w, StyleTitle.Render("Partitions"))
	writeTable(w, []string{"Index", "Name", "Drawn"}, rows)

	if len(d.Topologies) > 0 {
		fmt.Fprintln(w, StyleTitle.Render("Hwloc topologies"))
		for _, t := range d.Topologies {
			fmt.Fprintln(w, "  "+StyleDim.Render(iconInfo)+" "+StyleValue.Render(t))
		}
		fmt.Fprintln(w)
	}

	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	writeKeyValue(w, "color modes", strings.Join(names, ", "))
	return nil
}
