package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/whiteboard/pkg/document"
	"github.com/matzehuels/whiteboard/pkg/errors"
)

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "view <document>",
		Short: "Page through a document in the terminal",
		Long: fmt.Sprintf(`Page through a document the way the board shows it: one page at a
time, split on form feeds, one line per row.

Accepted documents: %s.`, strings.Join(document.Extensions(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
			}
			pages, err := document.Extract(filepath.Base(path), data)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("Loaded document", "file", path, "pages", len(pages))

			m := NewPagerModel(filepath.Base(path), pages, page-1)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to open (1-based)")
	return cmd
}
