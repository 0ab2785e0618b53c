package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/netdraw/pkg/color"
	"github.com/matzehuels/netdraw/pkg/search"
	"github.com/matzehuels/netdraw/pkg/view"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	minListHeight  = 5
	detailsHeight  = 10
	chromeHeight   = 8 // title, help, status and table borders
	defaultListLen = 15
)

// =============================================================================
// BrowseModel - Interactive topology view
// =============================================================================

// BrowseModel is the bubbletea model of the browse command. It drives one
// GraphSession: the cursor walks the shown nodes, aggregates expand and
// collapse in place, and searches replace the selection.
type BrowseModel struct {
	Session *view.GraphSession

	rows      []string // Shown node ids, sorted
	cursor    int
	offset    int
	height    int
	searching bool
	input     textinput.Model
	details   viewport.Model
	status    string
	failed    bool
}

// NewBrowseModel creates a browse model over s.
func NewBrowseModel(s *view.GraphSession) BrowseModel {
	in := textinput.New()
	in.Placeholder = "field=pattern (default field: id)"
	in.Prompt = "/ "
	in.CharLimit = 256

	m := BrowseModel{
		Session: s,
		height:  defaultListLen,
		input:   in,
		details: viewport.New(80, detailsHeight),
	}
	m.refresh()
	return m
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-detailsHeight-chromeHeight, minListHeight)
		m.details.Width = msg.Width
		m.clampOffset()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m BrowseModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.clampOffset()
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.clampOffset()
	case " ":
		m.toggleSelected()
	case "enter", "e":
		m.expand()
	case "E":
		_, err := m.Session.ExpandSelected()
		m.report(err, "expanded selection")
	case "c", "backspace":
		m.collapse()
	case "p":
		m.cyclePartition()
	case "m":
		m.cycleColorMode()
	case "/":
		m.searching = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case "pgdown", "J":
		m.details.HalfPageDown()
	case "pgup", "K":
		m.details.HalfPageUp()
	}
	return m, nil
}

func (m BrowseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		m.search(m.input.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// Actions
// =============================================================================

func (m *BrowseModel) current() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return "", false
	}
	return m.rows[m.cursor], true
}

func (m *BrowseModel) toggleSelected() {
	id, ok := m.current()
	if !ok {
		return
	}
	nodes, edges := m.Session.Selection()
	if i := slices.Index(nodes, id); i >= 0 {
		nodes = slices.Delete(nodes, i, i+1)
	} else {
		nodes = append(nodes, id)
	}
	m.Session.Select(nodes, edges)
	m.status, m.failed = "", false
	m.refresh()
}

func (m *BrowseModel) expand() {
	id, ok := m.current()
	if !ok {
		return
	}
	_, err := m.Session.Expand(id)
	m.report(err, "expanded "+id)
}

// collapse folds the aggregate the cursor node belongs to.
func (m *BrowseModel) collapse() {
	id, ok := m.current()
	if !ok {
		return
	}
	parent, ok := m.Session.Graph().Parent(id)
	if !ok {
		m.status, m.failed = id+" is not part of an aggregate", true
		return
	}
	_, err := m.Session.Collapse(parent.ID)
	m.report(err, "collapsed "+parent.ID)
	if err == nil {
		m.cursor = max(slices.Index(m.rows, parent.ID), 0)
		m.clampOffset()
	}
}

func (m *BrowseModel) cyclePartition() {
	opts := view.PartitionOptions(m.Session.Graph())
	next := 0
	for i, o := range opts {
		if o.Value == m.Session.Partition() {
			next = (i + 1) % len(opts)
		}
	}
	err := m.Session.Draw(opts[next].Value)
	m.report(err, "partition "+opts[next].Label)
}

func (m *BrowseModel) cycleColorMode() {
	modes := color.Modes(m.Session.Graph())
	next := (slices.Index(modes, m.Session.ColorMode()) + 1) % len(modes)
	err := m.Session.SetColorMode(modes[next])
	m.report(err, "color mode "+string(modes[next]))
}

// search runs "field=pattern" (or a bare pattern on ids) over the shown
// records and selects the matches.
func (m *BrowseModel) search(query string) {
	field, pattern, ok := strings.Cut(query, "=")
	if !ok {
		field, pattern = "id", query
	}
	match, err := search.Select(m.Session.Graph(), m.Session.ShownNodeIndices(), m.Session.ShownEdgeIndices(), field, pattern)
	if err != nil {
		m.report(err, "")
		return
	}
	m.Session.Select(match.Nodes, match.Edges)
	m.report(nil, fmt.Sprintf("%d nodes, %d edges match", len(match.Nodes), len(match.Edges)))
}

// report records the outcome of an action and redraws the lists.
func (m *BrowseModel) report(err error, ok string) {
	if err != nil {
		m.status, m.failed = err.Error(), true
		return
	}
	m.status, m.failed = ok, false
	m.refresh()
}

func (m *BrowseModel) refresh() {
	m.rows = m.Session.ShownNodes()
	slices.Sort(m.rows)
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	m.clampOffset()

	g := m.Session.Graph()
	nodes, edges := m.Session.Selection()
	content := search.SummarizeNodes(g, nodes).String() +
		search.SummarizeEdges(g, edges, len(nodes) > 0).String()
	m.details.SetContent(content)
	m.details.GotoTop()
}

func (m *BrowseModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// =============================================================================
// View
// =============================================================================

func (m BrowseModel) View() string {
	var b strings.Builder

	label := "All"
	for _, o := range view.PartitionOptions(m.Session.Graph()) {
		if o.Value == m.Session.Partition() {
			label = o.Label
		}
	}
	b.WriteString(StyleTitle.Render("netdraw browse"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  partition %s · colors %s", label, m.Session.ColorMode())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  space select  e expand  c collapse  / search  p partition  m colors  q quit"))
	b.WriteString("\n\n")

	selected, _ := m.Session.Selection()
	end := min(m.offset+m.height, len(m.rows))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		id := m.rows[i]
		st, _ := m.Session.NodeState(id)
		n, _ := m.Session.Graph().Node(id)

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		kind := n.Type
		if n.IsAggregate() {
			kind += " +"
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Render("●")
		rows = append(rows, []string{cursor, swatch, id, kind, n.Title})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Node", "Type", "Title").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.offset + row
			if idx >= len(m.rows) || col == 1 {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.cursor:
				return listSelectedStyle
			case slices.Contains(selected, m.rows[idx]):
				return listMarkedStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(m.rows)), len(m.rows))))
	b.WriteString("\n")

	b.WriteString(m.details.View())
	b.WriteString("\n")

	switch {
	case m.searching:
		b.WriteString(m.input.View())
	case m.failed:
		b.WriteString(statusErrorStyle.Render(iconError + " " + m.status))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(iconSuccess + " " + m.status))
	}
	b.WriteString("\n")

	return b.String()
}
