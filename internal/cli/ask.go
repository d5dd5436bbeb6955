package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/whiteboard/pkg/cache"
	"github.com/matzehuels/whiteboard/pkg/errors"
)

// askCommand creates the ask command.
func (c *CLI) askCommand() *cobra.Command {
	var (
		image   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>...",
		Short: "Ask the chat model, or the vision model about an image",
		Long: `Send one question to the chat model and print the answer.

With --image the question goes to the vision model together with the PNG,
the same way the server's analyze endpoint sends a canvas capture. Chat
answers are cached unless --no-cache is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")
			if err := errors.ValidateQuery(query); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			var ask func() (string, error)
			model := cfg.Chat.Model
			if image != "" {
				png, err := readPNG(image)
				if err != nil {
					return err
				}
				vision := newAssistant(cfg.Vision)
				model = vision.Model()
				ask = func() (string, error) { return vision.Analyze(ctx, query, png) }
			} else {
				store := cache.Cache(cache.NewNullCache())
				if !noCache {
					if store, err = newCache(ctx, cfg.Cache); err != nil {
						return err
					}
				}
				defer store.Close()
				chat := newAssistant(cfg.Chat).WithCache(store, newKeyer(cfg.Cache), cfg.Cache.ChatTTL.Duration)
				ask = func() (string, error) { return chat.Chat(ctx, query) }
			}

			spin := newSpinnerWithContext(ctx, "Asking "+model+"...")
			spin.Start()
			answer, err := ask()
			spin.Stop()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	cmd.Flags().StringVarP(&image, "image", "i", "", "PNG image to ask the vision model about")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or write cached chat answers")
	return cmd
}

func readPNG(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if ct := http.DetectContentType(data); ct != "image/png" {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s is %s, not a PNG image", path, ct)
	}
	return data, nil
}
