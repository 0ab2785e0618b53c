package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/topology"
	"github.com/matzehuels/netdraw/pkg/view"
)

var errNoTerminal = errors.New("browse needs an interactive terminal; use describe or search instead")

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// browseFlags holds the flags of the browse command beyond the view flags.
type browseFlags struct {
	output  string
	noCache bool
	save    bool
	resume  string
}

// browseCommand creates the browse command, an interactive terminal view of
// a topology document.
func (c *CLI) browseCommand() *cobra.Command {
	var flags browseFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "browse [topology.json]",
		Short: "Explore a topology document interactively",
		Long: `Explore a topology document interactively.

Walk the shown nodes, expand and collapse aggregated switches, switch
partitions and color modes, and search records. The details pane lists the
summary of the current selection.

With --save the view is kept as a session on exit and can be reopened with
--resume. With --output the frame shown on exit is written as a layout file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			ctx := cmd.Context()
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errNoTerminal
			}

			dir, err := sessionsDir()
			if err != nil {
				return fmt.Errorf("get sessions dir: %w", err)
			}
			store, err := session.NewFileStore(dir)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Cleanup(ctx); err != nil {
				c.Logger.Warn("clean up sessions", "err", err)
			}

			s, sess, err := c.browseView(ctx, opts, flags, store)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewBrowseModel(s), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("browse: %w", err)
			}

			if flags.save || sess != nil {
				if sess, err = saveBrowseSession(ctx, store, sess, s); err != nil {
					return err
				}
				printSuccess("Session saved")
				printDetail("id: %s", sess.ID)
				printNextStep("Resume", appName+" browse "+opts.Path+" --resume "+sess.ID)
			}

			if flags.output == "" {
				return nil
			}
			if err := graph.WriteLayoutFile(s.Frame(), flags.output, false); err != nil {
				return fmt.Errorf("write output %s: %w", flags.output, err)
			}
			printSuccess("Frame saved")
			printFile(flags.output)
			printNextStep("Render", appName+" visualize "+flags.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the final frame to this layout file")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.save, "save", false, "save the view as a session on exit")
	cmd.Flags().StringVar(&flags.resume, "resume", "", "reopen a saved session (view flags are ignored)")
	addViewFlags(cmd, &opts)

	return cmd
}

// browseView draws the view described by opts, or replays the saved session
// named by flags.resume. A resumed session must view the same document
// version it was saved from.
func (c *CLI) browseView(ctx context.Context, opts pipeline.Options, flags browseFlags, store session.Store) (*view.GraphSession, *session.Session, error) {
	if flags.resume == "" {
		s, err := c.openView(ctx, opts, flags.noCache)
		return s, nil, err
	}

	sess, err := session.MustGet(ctx, store, flags.resume)
	if err != nil {
		return nil, nil, fmt.Errorf("resume %s: %w", flags.resume, err)
	}
	runner, l, err := c.loadDocument(ctx, opts, flags.noCache)
	if err != nil {
		return nil, nil, err
	}
	defer runner.Close()
	if l.Hash != sess.DocumentHash {
		return nil, nil, fmt.Errorf("resume %s: session views another version of %s", flags.resume, opts.Path)
	}

	g, err := topology.Load(l.Document)
	if err != nil {
		return nil, nil, err
	}
	s, err := view.Restore(g, sess.Snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("resume %s: %w", flags.resume, err)
	}
	c.Logger.Info("resumed session", "id", sess.ID, "operations", len(sess.Snapshot.Log))
	return s, sess, nil
}

// saveBrowseSession stores the state of s, creating the session if needed.
func saveBrowseSession(ctx context.Context, store session.Store, sess *session.Session, s *view.GraphSession) (*session.Session, error) {
	if sess == nil {
		sess = session.New(s.Snapshot(), session.DefaultTTL)
	} else {
		sess.Update(s.Snapshot(), session.DefaultTTL)
	}
	if err := store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}
