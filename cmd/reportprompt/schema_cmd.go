package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/config"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/metadata"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/schema"
)

func newSchemaCmd() *cobra.Command {
	var (
		maxParams  int
		submission bool
	)
	cmd := &cobra.Command{
		Use:   "schema <records.json|records.yaml>",
		Short: "Print the field schema for a file of raw parameter records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := metadata.LoadFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-params") {
				cfg.MaxParams = maxParams
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			reg, err := newFormulas(cfg, slog.Default())
			if err != nil {
				return err
			}

			params, err := report.NewParser(cfg.MaxParams, reg).Parse(src.Records)
			if err != nil {
				return err
			}
			fs, err := schema.Build(params, cfg.MaxParams)
			if err != nil {
				return err
			}

			var out any = fs
			if submission {
				out = fs.SubmissionSchema()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().IntVar(&maxParams, "max-params", report.DefaultMaxParams, "slot capacity")
	cmd.Flags().BoolVar(&submission, "submission", false, "print the submission JSON Schema instead")
	return cmd
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the remote parameter types and their canonical mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "REMOTE TYPE\tCANONICAL\tWITH TIME FORMAT")
			for _, name := range report.RemoteTypeNames() {
				plain, err := report.MapType(name, "")
				if err != nil {
					return err
				}
				timed, err := report.MapType(name, "yyyy-MM-dd HH:mm:ss")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", name, plain, timed)
			}
			return tw.Flush()
		},
	}
}
