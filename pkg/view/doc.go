// Package view holds the interactive state of one topology viewer.
//
// A [GraphSession] owns everything a viewer changes while a user explores a
// topology: which nodes and edges are shown, their render state (position,
// physics, fixed, color), the selection, the active partition and the color
// mode. All operations go through the session; there is no package-level
// state.
//
// # Drawing
//
// [GraphSession.Draw] rebuilds the view from the graph model. A node is shown
// when it is not merged into an aggregate and belongs to the active
// partition. An edge is shown when both endpoints are shown, it belongs to
// the partition, and it is the canonical direction of its pair (see
// [GraphSession.ShownEdges]). Tree documents are then laid out by package
// layout with physics disabled.
//
// # Expansion
//
// [GraphSession.Expand] replaces an aggregate by its sub-nodes and
// [GraphSession.Collapse] folds them back. Both return the [Instruction]s a
// renderer needs to apply the change incrementally.
//
// # Renderer Events
//
// Renderers report a closed set of events ([DragStart], [DragEnd],
// [StabilizationDone], [NodeSelected], [EdgeSelected]) through
// [GraphSession.Handle], which updates the session and answers with
// instructions. Events never carry callbacks into the session.
//
// # Persistence
//
// Every structural change is appended to an operation log. [Snapshot]
// captures the log and the selection; [Restore] replays it on a freshly
// loaded graph to rebuild an identical session.
//
// A GraphSession is not safe for concurrent use.
package view
