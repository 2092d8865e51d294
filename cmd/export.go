package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hawaii-osds/mpat-cli/internal/model"
	"github.com/hawaii-osds/mpat-cli/internal/mpat"
)

var exportCmd = &cobra.Command{
	Use:   "export <version>",
	Short: "Re-export a recorded build's table as XLSX",
	Long:  "Reads the CSV artifact of a recorded build version (e.g. v01) and regenerates the XLSX review copy. Useful after the spreadsheet has been edited or lost.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := args[0]
		if !strings.HasPrefix(tag, "v") {
			return eris.Errorf("export: version must be a tag like v01, got %q", tag)
		}

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Output.Dir
		}
		paths := mpat.ArtifactPaths(dir, tag)

		data, err := os.ReadFile(paths.CSV)
		if err != nil {
			return eris.Wrapf(err, "export: read %s", paths.CSV)
		}

		var rows []*model.Row
		if err := csvutil.Unmarshal(data, &rows); err != nil {
			return eris.Wrapf(err, "export: parse %s", paths.CSV)
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = paths.XLSX
		}
		if err := mpat.WriteXLSX(out, rows); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Exported %d rows -> %s\n", len(rows), filepath.Clean(out))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("dir", "", "artifact directory holding the build (default: output.dir)")
	exportCmd.Flags().String("out", "", "output XLSX path (default: alongside the CSV)")

	rootCmd.AddCommand(exportCmd)
}
