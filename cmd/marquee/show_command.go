package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/review"
	"marquee/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [showId]",
		Short: "List shows, or the canonical reviews of one show",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(commandContextOrBackground(cmd), func(st *store.Store) error {
				if len(args) == 0 {
					return listShows(cmd, st, jsonOutput)
				}
				return showReviews(cmd, st, strings.TrimSpace(args[0]), jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}

func listShows(cmd *cobra.Command, st *store.Store, jsonOutput bool) error {
	shows, err := st.Shows(commandContextOrBackground(cmd))
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, shows)
	}
	out := cmd.OutOrStdout()
	if len(shows) == 0 {
		fmt.Fprintln(out, "No shows in the canonical store")
		return nil
	}
	rows := make([][]string, 0, len(shows))
	total := 0
	for _, s := range shows {
		total += s.Reviews
		rows = append(rows, []string{s.ShowID, strconv.Itoa(s.Reviews), strconv.Itoa(s.Scored)})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Show", "Reviews", "Scored"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
		fmt.Sprintf("%d shows", len(shows)), strconv.Itoa(total), "",
	))
	return nil
}

func showReviews(cmd *cobra.Command, st *store.Store, showID string, jsonOutput bool) error {
	reviews, err := st.ListReviews(commandContextOrBackground(cmd), showID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return fmt.Errorf("no canonical reviews for show %q", showID)
	}
	if jsonOutput {
		return writeJSON(cmd, reviews)
	}
	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, reviewRow(r))
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Outlet", "Critic", "Score", "Bucket", "Confidence", "Signal", "Records"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

func reviewRow(r *review.CanonicalReview) []string {
	score, bucket, confidence, signal := "-", "-", "-", "-"
	if c := r.Consensus; c != nil {
		score = strconv.Itoa(c.Score)
		bucket = string(c.Bucket)
		confidence = string(c.Confidence)
		signal = string(c.Contributing.Kind)
		if c.Contributing.Source != "" {
			signal += " (" + c.Contributing.Source + ")"
		}
	}
	return []string{
		r.OutletName,
		r.CriticName,
		score,
		bucket,
		confidence,
		signal,
		strconv.Itoa(len(r.MemberIDs)),
	}
}
