package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/search"
	"github.com/matzehuels/netdraw/pkg/view"
)

// searchCommand creates the search command, which selects shown records by
// a regular expression on one field.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		noCache bool
		details bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "search [topology.json] [field] [pattern]",
		Short: "Search the shown records of a topology view",
		Long: fmt.Sprintf(`Search the shown records of a topology view.

The pattern is a regular expression matched against one record field.
Node fields: %v
Edge fields: %v

The "part" field matches partition names and "topo" matches hwloc topology
names. Zero, empty and false values never match.`, search.NodeFields, search.EdgeFields),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			s, err := c.openView(cmd.Context(), opts, noCache)
			if err != nil {
				return err
			}
			return runSearch(cmd.OutOrStdout(), s, args[1], args[2], details)
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "print the selection summary")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addViewFlags(cmd, &opts)

	return cmd
}

func runSearch(w io.Writer, s *view.GraphSession, field, pattern string, details bool) error {
	g := s.Graph()
	m, err := search.Select(g, s.ShownNodeIndices(), s.ShownEdgeIndices(), field, pattern)
	if err != nil {
		return err
	}
	s.Select(m.Nodes, m.Edges)

	if len(m.Nodes) == 0 && len(m.Edges) == 0 {
		fmt.Fprintln(w, StyleWarning.Render("no records match"))
		return nil
	}

	if len(m.Nodes) > 0 {
		rows := make([][]string, 0, len(m.Nodes))
		for _, id := range m.Nodes {
			n, _ := g.Node(id)
			rows = append(rows, []string{n.ID, n.Type, n.Title, n.Hostname})
		}
		fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%d nodes", len(m.Nodes))))
		writeTable(w, []string{"ID", "Type", "Title", "Hostname"}, rows)
	}
	if len(m.Edges) > 0 {
		rows := make([][]string, 0, len(m.Edges))
		for _, id := range m.Edges {
			e, _ := g.Edge(id)
			rows = append(rows, []string{e.ID, e.From, e.To, strconv.Itoa(e.Label)})
		}
		fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("%d edges", len(m.Edges))))
		writeTable(w, []string{"ID", "From", "To", "Gb"}, rows)
	}

	if details {
		nodes, edges := s.Selection()
		fmt.Fprint(w, search.SummarizeNodes(g, nodes).String())
		fmt.Fprint(w, search.SummarizeEdges(g, edges, len(nodes) > 0).String())
	}
	return nil
}
