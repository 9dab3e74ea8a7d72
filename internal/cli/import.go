package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/andreyvit/glass"
	"github.com/andreyvit/glass/rainfusion"
)

func NewImportCommand(opts *RootOptions) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Insert every mod of a JSON array",
		Long: `Insert every mod of a JSON array under new ids.

Inserts run --jobs at a time. Concurrent inserts may be given equal ranks,
in which case they are ordered by id; use --jobs 1 to keep the file order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs < 1 {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid --jobs %d: must be at least 1", jobs))
			}
			batch, err := readMods(cmd, args[0])
			if err != nil {
				return err
			}
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				ids := make([]glass.ID, len(batch))
				g, gctx := errgroup.WithContext(ctx)
				g.SetLimit(jobs)
				for i := range batch {
					i := i
					g.Go(func() error {
						id, err := mods.Insert(gctx, &batch[i])
						ids[i] = id
						return err
					})
				}
				if err := g.Wait(); err != nil {
					return storeError("import failed", err)
				}
				return out.Success(map[string]any{"ids": ids}, func(w io.Writer) {
					for _, id := range ids {
						fmt.Fprintln(w, id)
					}
				})
			})
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "inserts to run at once")
	return cmd
}

func readMods(cmd *cobra.Command, path string) ([]rainfusion.Mod, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		r = f
	}
	var batch []rainfusion.Mod
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse mods JSON", err)
	}
	return batch, nil
}
