package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hawaii-osds/mpat-cli/internal/model"
	"github.com/hawaii-osds/mpat-cli/internal/mpat"
	"github.com/hawaii-osds/mpat-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect build history",
	Long:  "Commands for listing and viewing recorded table builds.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded builds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		builds, err := st.ListBuilds(ctx, store.BuildFilter{
			Status: model.BuildStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(builds) == 0 {
			fmt.Fprintln(os.Stderr, "No builds found.")
			return nil
		}

		formatBuildsList(os.Stdout, builds)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <build-id>",
	Short: "Show full details of a build",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		build, err := st.GetBuild(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(build)
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by build status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of builds to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatBuildsList writes a tabular list of builds to w.
func formatBuildsList(out io.Writer, builds []model.BuildRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tVERSION\tSTATUS\tROWS\tEXCLUDED\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t----\t--------\t-------\t--------")

	for _, b := range builds {
		dur := b.UpdatedAt.Sub(b.CreatedAt).Round(time.Second).String()

		rows, excluded := "", ""
		if b.Summary != nil {
			rows = fmt.Sprintf("%d", b.Summary.Rows)
			excluded = fmt.Sprintf("%d", b.Summary.Excluded)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(b.ID),
			mpat.VersionTag(b.Version),
			b.Status,
			rows,
			excluded,
			b.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
