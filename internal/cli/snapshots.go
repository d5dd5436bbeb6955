package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/whiteboard/pkg/config"
	"github.com/matzehuels/whiteboard/pkg/errors"
	"github.com/matzehuels/whiteboard/pkg/snapshot"
)

// snapshotsCommand creates the snapshots command.
func (c *CLI) snapshotsCommand() *cobra.Command {
	var (
		limit int
		save  string
	)

	cmd := &cobra.Command{
		Use:   "snapshots [session-id]",
		Short: "List the board images sent to the visual assistant",
		Long: `List archived analyze snapshots, newest first, optionally for a single
session. With --save each listed image is also written to <dir>/<id>.png.

Only the sqlite backend can be listed from here.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Snapshots.Backend != config.BackendSQLite {
				return errors.New(errors.ErrCodeUnsupported,
					"snapshots.backend is %q; listing needs the sqlite backend", cfg.Snapshots.Backend)
			}
			if limit < 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--limit must be positive")
			}
			var sessionID string
			if len(args) == 1 {
				sessionID = args[0]
			}

			store, err := snapshot.NewSQLiteStore(cfg.Snapshots.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			snaps, err := store.Recent(cmd.Context(), sessionID, limit)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				printInfo("No snapshots")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), snapshotTable(snaps).Render())

			if save == "" {
				return nil
			}
			if err := os.MkdirAll(save, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", save)
			}
			for _, s := range snaps {
				path := filepath.Join(save, s.ID+".png")
				if err := os.WriteFile(path, s.PNG, 0o644); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
				}
			}
			printSuccess("Saved %d images", len(snaps))
			printDetail("Directory: %s", save)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of snapshots")
	cmd.Flags().StringVar(&save, "save", "", "directory to write the listed images to")
	return cmd
}

func snapshotTable(snaps []snapshot.Snapshot) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "TIME", "SESSION", "BYTES", "PROMPT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, s := range snaps {
		t.Row(s.ID, s.CreatedAt.Local().Format(snapshot.TimeFormat), s.SessionID,
			strconv.Itoa(len(s.PNG)), truncate(s.Metadata["prompt"], 40))
	}
	return t
}
