package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"sdn-te/internal/engine"
	"sdn-te/internal/model"
	"sdn-te/internal/parser"
	"sdn-te/internal/pathsel"
	"sdn-te/internal/topology"
)

func (c *cli) newProvisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Run one provisioning cycle and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := model.ParseMode(c.config.GetString(cfgMode))
			if err != nil {
				return err
			}
			eng, err := c.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			report, err := eng.Provision(cmd.Context(), mode)
			if err != nil {
				c.logger.Error("Provisioning failed", "mode", mode, "error", err)
				return err
			}
			writeReport(c.out, report)
			return nil
		},
	}
	addModeFlag(cmd.Flags(), string(model.ModePassBy), "Objective mode to provision")
	return cmd
}

func (c *cli) newPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Compute the paths of every objective without pushing rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := model.ParseMode(c.config.GetString(cfgMode))
			if err != nil {
				return err
			}
			eng, err := c.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			plans, err := eng.Plan(cmd.Context(), mode)
			if err != nil {
				return err
			}
			writePlans(c.out, eng.Topology(), mode, plans)
			return nil
		},
	}
	addModeFlag(cmd.Flags(), string(model.ModeMinLatency), "Objective mode to plan")
	return cmd
}

func (c *cli) newObjectivesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objectives",
		Short: "Manage stored objectives",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Copy the configured objectives to another file or database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.loadObjectives(ctx)
			if err != nil {
				return err
			}

			kind := c.config.GetString(cfgToProvider)
			to := c.config.GetString(cfgTo)
			target, closeFn, err := parser.OpenObjectiveProvider(kind, to)
			if err != nil {
				return err
			}
			defer closeFn()

			if db, ok := target.(*parser.MariaDBObjectives); ok {
				if err := db.EnsureSchema(ctx); err != nil {
					return err
				}
			}
			set := store.Snapshot()
			if err := target.Save(ctx, set); err != nil {
				c.logger.Error("Failed to save objectives", "provider", kind, "error", err)
				return err
			}
			c.logger.Info("Objectives exported", "provider", kind, "count", set.Len())
			fmt.Fprintf(c.out, "exported %d objectives\n", set.Len())
			return nil
		},
	}
	export.Flags().String(cfgTo, "", "Target file path or DSN (required)")
	export.Flags().String(cfgToProvider, parser.ProviderFile, "Target provider type: 'file' or 'mariadb'")
	export.MarkFlagRequired(cfgTo)

	cmd.AddCommand(export)
	return cmd
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}

func writeReport(w io.Writer, report *engine.Report) {
	fmt.Fprintf(w, "mode %s: %d objectives, %d rules installed, %d withdrawn, %d skipped\n",
		report.Mode, report.Objectives, report.Installed, report.Withdrawn, len(report.Skipped))
	if len(report.Skipped) == 0 {
		return
	}
	table := newTable(w, []string{"#", "OBJECTIVE", "REASON", "ERROR"})
	for _, s := range report.Skipped {
		table.Append([]string{strconv.Itoa(s.Index), s.Objective, s.Reason, s.Message})
	}
	table.Render()
}

func writePlans(w io.Writer, topo *topology.Topology, mode model.Mode, plans []engine.PathPlan) {
	metric := "DELAY"
	if mode == model.ModeMaxBandwidth {
		metric = "BOTTLENECK"
	}
	table := newTable(w, []string{"#", "OBJECTIVE", "FORWARD", "REVERSE", metric, "ERROR"})
	for i, p := range plans {
		row := []string{strconv.Itoa(i), p.Objective.String(), joinPath(p.Forward), joinPath(p.Reverse), "", ""}
		if p.Err != nil {
			row[5] = engine.SkipReason(p.Err)
		} else if topo != nil {
			row[4] = pathMetric(topo, mode, p.Forward)
		}
		table.Append(row)
	}
	table.Render()
}

func pathMetric(topo *topology.Topology, mode model.Mode, path []string) string {
	var (
		v  float64
		ok bool
	)
	switch mode {
	case model.ModeMaxBandwidth:
		v, ok = pathsel.Bottleneck(topo, path)
	default:
		v, ok = pathsel.Delay(topo, path)
	}
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return "-"
	}
	return strings.Join(path, " > ")
}
