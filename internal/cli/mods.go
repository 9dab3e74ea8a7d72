package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andreyvit/glass"
	"github.com/andreyvit/glass/rainfusion"
)

type modView struct {
	ID  glass.ID        `json:"id"`
	Mod *rainfusion.Mod `json:"mod,omitempty"`
}

type listView struct {
	Entries []modView `json:"entries"`
	End     bool      `json:"end"`
}

type modsFunc func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error

// withMods opens the store for the duration of fn.
func withMods(opts *RootOptions, cmd *cobra.Command, fn modsFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, rainfusion.Mods(store), opts.output(cmd))
}

func readMod(cmd *cobra.Command, args []string) (*rainfusion.Mod, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		r = f
	}
	var mod rainfusion.Mod
	if err := json.NewDecoder(r).Decode(&mod); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse mod JSON", err)
	}
	return &mod, nil
}

func NewInsertCommand(opts *RootOptions) *cobra.Command {
	var idFlag string
	cmd := &cobra.Command{
		Use:   "insert [FILE]",
		Short: "Insert a mod read as JSON from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mod, err := readMod(cmd, args)
			if err != nil {
				return err
			}
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				var id glass.ID
				if idFlag != "" {
					if id, err = parseIDArg(idFlag); err != nil {
						return err
					}
					id, err = mods.InsertWithID(ctx, id, mod)
				} else {
					id, err = mods.Insert(ctx, mod)
				}
				if err != nil {
					return storeError("insert failed", err)
				}
				return out.Success(modView{ID: id}, func(w io.Writer) {
					fmt.Fprintln(w, id)
				})
			})
		},
	}
	cmd.Flags().StringVar(&idFlag, "id", "", "insert under this id instead of a new one")
	return cmd
}

func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				mod, found, err := mods.Lookup(ctx, id)
				if err != nil {
					return storeError("get failed", err)
				}
				if !found {
					return WrapExitError(ExitFailure, fmt.Sprintf("mod %v", id), glass.ErrNotFound)
				}
				return out.Success(modView{ID: id, Mod: mod}, func(w io.Writer) {
					fmt.Fprintf(w, "%-13s %v\n", "ID:", id)
					io.WriteString(w, mod.Display())
				})
			})
		},
	}
}

func NewFieldsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields ID",
		Short: "Show the raw stored fields of one mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				bag, err := mods.Retrieve(ctx, id)
				if err != nil {
					return storeError("fields failed", err)
				}
				return out.Success(bag, func(w io.Writer) {
					for _, f := range mods.Type().Order(bag) {
						fmt.Fprintf(w, "%s: %s\n", f.Name, f.Value)
					}
				})
			})
		},
	}
}

func NewEditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID FIELD=VALUE...",
		Short: "Overwrite raw fields of one mod",
		Long: `Overwrite raw fields of one mod. Values are stored as given, so nested
fields (dependencies, tags) must be written in the store's codec format.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				changes := make([]glass.FieldValue, 0, len(args)-1)
				for _, arg := range args[1:] {
					name, value, ok := strings.Cut(arg, "=")
					if !ok {
						return NewExitError(ExitCommandError, fmt.Sprintf("expected FIELD=VALUE, got %q", arg))
					}
					if !mods.Mapper().HasField(name) {
						return storeError("edit failed", fmt.Errorf("%s.%s: %w", mods.Name(), name, glass.ErrUnknownField))
					}
					changes = append(changes, glass.FieldValue{Name: name, Value: value})
				}
				if err := mods.Edit(ctx, id, changes...); err != nil {
					return storeError("edit failed", err)
				}
				return out.Success(modView{ID: id}, func(w io.Writer) {
					fmt.Fprintf(w, "updated %d field(s) of %v\n", len(changes), id)
				})
			})
		},
	}
}

func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete one mod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				if err := mods.Remove(ctx, id); err != nil {
					return storeError("remove failed", err)
				}
				return out.Success(modView{ID: id}, func(w io.Writer) {
					fmt.Fprintf(w, "removed %v\n", id)
				})
			})
		},
	}
}

func NewListCommand(opts *RootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mods in index order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				paged := cmd.Flags().Changed("page")
				var entries []glass.TypedEntry[rainfusion.Mod]
				var err error
				if paged {
					entries, err = mods.Page(ctx, page)
				} else {
					entries, err = mods.All(ctx)
				}
				if err != nil {
					return storeError("list failed", err)
				}

				view := listView{Entries: []modView{}, End: !paged}
				for _, e := range entries {
					if e.IsSentinel() {
						view.End = true
						continue
					}
					view.Entries = append(view.Entries, modView{ID: e.ID, Mod: e.Record})
				}
				return out.Success(view, func(w io.Writer) {
					for _, e := range view.Entries {
						fmt.Fprintf(w, "%v  %-24s  %s\n", e.ID, rainfusion.OrNA(e.Mod.Name), rainfusion.OrNA(e.Mod.Version))
					}
					if paged && view.End {
						fmt.Fprintln(w, "(end)")
					}
				})
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "show only this 1-based page instead of everything")
	return cmd
}

func NewCountCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of mods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				n, err := mods.Count(ctx)
				if err != nil {
					return storeError("count failed", err)
				}
				return out.Success(map[string]int64{"count": n}, func(w io.Writer) {
					fmt.Fprintln(w, n)
				})
			})
		},
	}
}

func NewFirstCommand(opts *RootOptions) *cobra.Command {
	return newEndCommand(opts, "first", "Print the id of the first mod", (*glass.Index).First)
}

func NewLastCommand(opts *RootOptions) *cobra.Command {
	return newEndCommand(opts, "last", "Print the id of the last mod", (*glass.Index).Last)
}

func newEndCommand(opts *RootOptions, use, short string, fn func(*glass.Index, context.Context) (glass.ID, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short + " (all zeros when there are none)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				id, err := fn(mods.Index(), ctx)
				if err != nil {
					return storeError(use+" failed", err)
				}
				return out.Success(modView{ID: id}, func(w io.Writer) {
					fmt.Fprintln(w, id)
				})
			})
		},
	}
}

func NewBumpCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bump ID DELTA",
		Short: "Add DELTA to a mod's rank (use -- before negative values)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid delta", err)
			}
			return withMods(opts, cmd, func(ctx context.Context, mods *glass.Collection[rainfusion.Mod], out *OutputFormatter) error {
				rank, err := mods.Index().AdjustScore(ctx, id, delta)
				if err != nil {
					return storeError("bump failed", err)
				}
				return out.Success(map[string]any{"id": id, "rank": rank}, func(w io.Writer) {
					fmt.Fprintln(w, rank)
				})
			})
		},
	}
}
