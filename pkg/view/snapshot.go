package view

import (
	"slices"

	"github.com/matzehuels/netdraw/pkg/color"
	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// OpKind names a logged structural change.
type OpKind string

// Logged operations.
const (
	OpDraw     OpKind = "draw"
	OpExpand   OpKind = "expand"
	OpCollapse OpKind = "collapse"
	OpColor    OpKind = "color"
)

// Op is one entry of the session's operation log.
type Op struct {
	Kind      OpKind     `json:"kind" bson:"kind"`
	ID        string     `json:"id,omitempty" bson:"id,omitempty"`
	Partition int        `json:"partition" bson:"partition"`
	Mode      color.Mode `json:"mode,omitempty" bson:"mode,omitempty"`
}

// Snapshot is the serializable state of a session.
type Snapshot struct {
	DocumentHash  string     `json:"document_hash" bson:"document_hash"`
	Partition     int        `json:"partition" bson:"partition"`
	ColorMode     color.Mode `json:"color_mode" bson:"color_mode"`
	Log           []Op       `json:"log" bson:"log"`
	SelectedNodes []string   `json:"selected_nodes,omitempty" bson:"selected_nodes,omitempty"`
	SelectedEdges []string   `json:"selected_edges,omitempty" bson:"selected_edges,omitempty"`
}

// Expansions returns every expand and collapse in the log, in order, with
// collapses as "-id". A redraw keeps the merged flags, so the list spans
// draws. Layout cache keys are built from it.
func (snap Snapshot) Expansions() []string {
	var out []string
	for _, op := range snap.Log {
		switch op.Kind {
		case OpExpand:
			out = append(out, op.ID)
		case OpCollapse:
			out = append(out, "-"+op.ID)
		}
	}
	return out
}

// Snapshot captures the session.
func (s *GraphSession) Snapshot() Snapshot {
	return Snapshot{
		DocumentHash:  s.hash,
		Partition:     s.partition,
		ColorMode:     s.mode,
		Log:           slices.Clone(s.log),
		SelectedNodes: slices.Clone(s.selNodes),
		SelectedEdges: slices.Clone(s.selEdges),
	}
}

// Restore rebuilds a session by replaying a snapshot's log on g. The graph
// must be freshly loaded from the snapshot's document: replay starts from
// the document's merged flags.
func Restore(g *topology.Graph, snap Snapshot) (*GraphSession, error) {
	s := New(g, WithDocumentHash(snap.DocumentHash))
	for n, op := range snap.Log {
		var err error
		switch op.Kind {
		case OpDraw:
			err = s.Draw(op.Partition)
		case OpExpand:
			_, err = s.Expand(op.ID)
		case OpCollapse:
			_, err = s.Collapse(op.ID)
		case OpColor:
			err = s.SetColorMode(op.Mode)
		default:
			err = errors.New(errors.ErrCodeInvalidInput, "unknown operation %q", op.Kind)
		}
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "replay operation %d (%s)", n, op.Kind)
		}
	}
	s.Select(snap.SelectedNodes, snap.SelectedEdges)
	return s, nil
}
