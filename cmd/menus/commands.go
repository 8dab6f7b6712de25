package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	menus "github.com/goliatone/go-menus"
	"github.com/goliatone/go-menus/internal/di"
	"github.com/goliatone/go-menus/internal/logging/console"
)

var errSeedSourceRequired = errors.New("seed: pass a yaml file or --demo")

// openModule builds a module from the environment overlaid with flags. The
// caller owns Close.
func openModule(cmd *cobra.Command, flags *rootFlags) (*menus.Module, error) {
	cfg, err := menus.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if flags.dsn != "" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.DSN = flags.dsn
	}
	if flags.driver != "" {
		cfg.Storage.Driver = flags.driver
	}

	var opts []di.Option
	if flags.logLevel != "" {
		level, ok := console.ParseLevel(flags.logLevel)
		if !ok {
			return nil, fmt.Errorf("%w: %q", menus.ErrLoggingLevelInvalid, flags.logLevel)
		}
		opts = append(opts, di.WithLoggerProvider(console.NewProvider(console.Options{
			Writer:   cmd.ErrOrStderr(),
			MinLevel: &level,
		})))
	}

	module, err := menus.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if flags.demo {
		if _, err := module.SeedDemo(cmd.Context(), flags.actorValue()); err != nil {
			_ = module.Close()
			return nil, err
		}
	}
	return module, nil
}

func (f *rootFlags) actorValue() menus.Actor {
	return menus.Actor{ID: f.actor, Role: menus.RoleSuperAdmin}
}

// withModule opens a module for the duration of run.
func withModule(flags *rootFlags, run func(ctx context.Context, cmd *cobra.Command, module *menus.Module, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		module, err := openModule(cmd, flags)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, module.Close())
		}()
		return run(cmd.Context(), cmd, module, args)
	}
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: withModule(flags, func(ctx context.Context, cmd *cobra.Command, module *menus.Module, _ []string) error {
			applied, err := module.Migrate(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "no pending migrations")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "applied %s\n", name)
			}
			return nil
		}),
	}
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [FILE]",
		Short: "Converge menus onto a yaml seed document",
		Args:  cobra.MaximumNArgs(1),
		RunE: withModule(flags, func(ctx context.Context, cmd *cobra.Command, module *menus.Module, args []string) error {
			if len(args) == 0 {
				if !flags.demo {
					return errSeedSourceRequired
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seeded demo menus")
				return nil
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			result, err := module.Seed(ctx, data, flags.actorValue())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "menus: %d created, %d updated; items: %d created, %d updated\n",
				result.MenusCreated, result.MenusUpdated, result.ItemsCreated, result.ItemsUpdated)
			return nil
		}),
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live menus",
		Args:  cobra.NoArgs,
		RunE: withModule(flags, func(ctx context.Context, cmd *cobra.Command, module *menus.Module, _ []string) error {
			listing, err := module.Service().ListMenus(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tLOCATION\tNAME\tITEMS\tACTIVE")
			for _, row := range listing {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", row.Menu.Slug, row.Menu.Location, row.Menu.Name, row.ItemCount, row.Menu.Active)
			}
			return w.Flush()
		}),
	}
}

func newTreeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree SLUG",
		Short: "Print the editing tree of a menu, inactive items included",
		Args:  cobra.ExactArgs(1),
		RunE: withModule(flags, func(ctx context.Context, cmd *cobra.Command, module *menus.Module, args []string) error {
			svc := module.Service()
			menu, err := svc.GetMenu(ctx, args[0], menus.LookupBySlug)
			if err != nil {
				return err
			}
			tree, err := svc.GetMenuTree(ctx, menu.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", tree.Name, tree.Location)
			menus.WalkForest(tree.Items, func(item *menus.MenuItem, depth int) {
				line := fmt.Sprintf("%s- %s %s", strings.Repeat("  ", depth+1), item.Title, svc.DisplayURL(ctx, tree.Slug, item))
				if !item.Active {
					line += " [inactive]"
				}
				fmt.Fprintln(out, strings.TrimRight(line, " "))
			})
			return nil
		}),
	}
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var (
		byLocation bool
		currentURL string
	)
	cmd := &cobra.Command{
		Use:   "render KEY",
		Short: "Render a menu as nested html lists",
		Args:  cobra.ExactArgs(1),
		RunE: withModule(flags, func(ctx context.Context, cmd *cobra.Command, module *menus.Module, args []string) error {
			kind := menus.LookupBySlug
			if byLocation {
				kind = menus.LookupByLocation
			}
			html, err := module.Service().RenderMenu(ctx, args[0], kind, menus.RenderOptions{CurrentURL: currentURL})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&byLocation, "location", false, "Treat KEY as a location instead of a slug")
	cmd.Flags().StringVar(&currentURL, "current-url", "", "Mark the item linking to this url as active")
	return cmd
}
