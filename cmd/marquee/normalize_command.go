package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type normalizedPair struct {
	Outlet           string `json:"outlet"`
	OutletName       string `json:"outlet_name"`
	OutletRegistered bool   `json:"outlet_registered"`
	Critic           string `json:"critic"`
	CriticName       string `json:"critic_name"`
	CriticAliased    bool   `json:"critic_aliased"`
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "normalize <outlet> <critic>",
		Short: "Print the identity keys an outlet and critic name reduce to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			norm, err := ctx.normalizer()
			if err != nil {
				return err
			}
			pair := normalizedPair{
				Outlet:     norm.Outlet(args[0]),
				OutletName: norm.DisplayName(args[0]),
				Critic:     norm.Critic(args[1]),
				CriticName: norm.DisplayName(args[1]),
			}
			if entry, ok := norm.RegisteredOutlet(pair.Outlet); ok {
				pair.OutletRegistered = true
				pair.OutletName = entry.Name
			}
			if name, ok := norm.RegisteredCritic(pair.Critic); ok {
				pair.CriticAliased = true
				pair.CriticName = name
			}
			if jsonOutput {
				return writeJSON(cmd, pair)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "outlet: %s (%s)%s\n", pair.Outlet, pair.OutletName, marker(pair.OutletRegistered, " [registry]"))
			fmt.Fprintf(out, "critic: %s (%s)%s\n", pair.Critic, pair.CriticName, marker(pair.CriticAliased, " [alias]"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}

func marker(ok bool, label string) string {
	if ok {
		return label
	}
	return ""
}
