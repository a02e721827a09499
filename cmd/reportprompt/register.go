package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/config"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/store"
)

func newRegisterCmd() *cobra.Command {
	var (
		name   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "register <service-name> <report.prpt>",
		Short: "Store a report definition under a service name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			format := report.OutputFormat(output)
			if !format.Valid() {
				return fmt.Errorf("unsupported output type %q", output)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			defs, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeDB() }()

			if name == "" {
				name = args[0]
			}
			id, err := defs.Save(cmd.Context(), &store.Definition{
				Name:       name,
				ReportName: args[0],
				Content:    content,
				OutputType: format,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %d, %d bytes)\n", args[0], id, len(content))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the service name)")
	cmd.Flags().StringVar(&output, "output-type", string(report.DefaultOutputFormat), "default output type")
	return cmd
}
