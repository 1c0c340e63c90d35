package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/registry"
	"marquee/internal/services"
)

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "registry [critic]",
		Short: "Show the critic registry, or one critic's outlet history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := registry.Load(cfg.RegistryPath())
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return services.Wrap(services.ErrNotFound, "registry", "load", "no critic registry yet; run `marquee run` first", err)
				}
				return err
			}

			if len(args) == 0 {
				if jsonOutput {
					return writeJSON(cmd, reg)
				}
				return renderRegistry(cmd, reg)
			}

			norm, err := ctx.normalizer()
			if err != nil {
				return err
			}
			key := norm.Critic(args[0])
			entry, ok := reg.Lookup(key)
			if !ok {
				return services.Wrap(services.ErrNotFound, "registry", "lookup", fmt.Sprintf("critic %q (key %q) not in registry", args[0], key), nil)
			}
			if jsonOutput {
				return writeJSON(cmd, entry)
			}
			return renderRegistryEntry(cmd, entry)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}

func renderRegistry(cmd *cobra.Command, reg *registry.Registry) error {
	out := cmd.OutOrStdout()
	if len(reg.Critics) == 0 {
		fmt.Fprintln(out, "Critic registry is empty")
		return nil
	}
	rows := make([][]string, 0, len(reg.Critics))
	for _, e := range reg.Critics {
		rows = append(rows, []string{
			e.Name,
			strconv.Itoa(e.Reviews),
			strconv.Itoa(len(e.Shows)),
			e.PrimaryOutlet,
			fmt.Sprintf("%.0f%%", e.PrimaryShare*100),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Critic", "Reviews", "Shows", "Primary outlet", "Share"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight},
	))
	return nil
}

func renderRegistryEntry(cmd *cobra.Command, e registry.Entry) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", e.Name, e.Critic)
	fmt.Fprintf(out, "Reviews: %d across %d shows\n", e.Reviews, len(e.Shows))
	fmt.Fprintf(out, "Shows:   %s\n", strings.Join(e.Shows, ", "))
	rows := make([][]string, 0, len(e.Outlets))
	for _, o := range e.Outlets {
		rows = append(rows, []string{o.OutletName, o.OutletID, strconv.Itoa(o.Reviews)})
	}
	fmt.Fprintln(out, renderTable([]string{"Outlet", "Key", "Reviews"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	return nil
}
