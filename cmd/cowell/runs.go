package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cowell/internal/analysis"
	"github.com/san-kum/cowell/internal/export"
	"github.com/san-kum/cowell/internal/storage"
	"github.com/san-kum/cowell/internal/viz"
	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/gravity"
)

var componentNames = []string{"x", "y", "z", "vx", "vy", "vz"}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDYNAMICS\tMODE\tTIME\tT1\tRESULT\tSAMPLES\tSTEPS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4g\t%s\t%d\t%d\n",
					run.ID,
					run.Dynamics,
					run.Mode,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.T1,
					run.Result,
					run.Samples,
					run.Stats.NumSteps,
				)
			}
			return w.Flush()
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id|latest]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, sol, err := loadRun(args[0])
			if err != nil {
				return err
			}
			fmt.Println(runSummary(*meta, sol))

			rows := map[string]string{
				"solver":     meta.Solver,
				"controller": meta.Controller,
				"args":       dynamo.Args(meta.Args).String(),
				"created":    meta.Timestamp.Format("2006-01-02 15:04:05"),
			}
			if meta.Event != "" {
				rows["event"] = meta.Event
			}
			fmt.Println(viz.Summary("setup", rows))
			return nil
		},
	}
}

func loadRun(ref string) (*storage.RunMetadata, *dynamo.Solution, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	runID, err := resolveRun(st, ref)
	if err != nil {
		return nil, nil, err
	}
	return st.LoadSolution(runID)
}

func newPlotCmd() *cobra.Command {
	var (
		width  int
		height int
		phase  bool
	)
	cmd := &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot state components and radius against time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, sol, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if sol.Len() < 2 {
				return fmt.Errorf("run %s has %d sample(s); nothing to plot", meta.ID, sol.Len())
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("dynamics: %s\n", meta.Dynamics)
			fmt.Printf("samples: %d\n\n", sol.Len())

			if phase {
				fmt.Println(analysis.PhasePortraitToASCII(analysis.ProjectPhase(sol, 0, 1), width, height*2))
				return nil
			}

			radius := make([]float64, sol.Len())
			for i, y := range sol.Ys {
				radius[i] = y.Position().Norm()
			}
			fmt.Println(asciigraph.Plot(radius,
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.Caption("|r| vs sample"),
			))
			fmt.Println()

			for i, name := range componentNames {
				if i >= len(sol.Ys[0]) {
					break
				}
				graph := asciigraph.Plot(sol.Component(i),
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(name+" vs sample"),
				)
				fmt.Println(graph)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	cmd.Flags().BoolVar(&phase, "phase", false, "draw the x-y track instead")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var component int
	cmd := &cobra.Command{
		Use:   "analyze [run_id|latest]",
		Short: "estimate the orbital period from the spectrum of a fixed-step run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, sol, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if component < 0 || component >= len(componentNames) {
				return fmt.Errorf("component must be in [0, %d), got %d", len(componentNames), component)
			}

			rows := map[string]string{"component": componentNames[component]}
			mu := dynamo.Args(meta.Args).FloatOr(gravity.KeyMu, 1)
			if _, y0, ok := first(sol); ok {
				a := gravity.SemiMajorAxis(y0, mu)
				rows["semi-major axis"] = fmt.Sprintf("%.6g", a)
				if a > 0 && !math.IsInf(a, 0) {
					rows["keplerian period"] = fmt.Sprintf("%.6g", gravity.Period(a, mu))
				}
			}

			period, err := analysis.DominantPeriod(sol, component)
			if err != nil {
				rows["spectral period"] = err.Error()
			} else {
				rows["spectral period"] = fmt.Sprintf("%.6g", period)
			}
			for k, val := range meta.Metrics {
				rows[k] = fmt.Sprintf("%.3e", val)
			}
			fmt.Println(viz.Summary("analysis of "+meta.ID, rows))

			if err == nil {
				ps := analysis.PowerSpectrum(sol.Component(component))
				fmt.Println(asciigraph.Plot(ps[:min(len(ps), 80)],
					asciigraph.Height(10),
					asciigraph.Caption("power spectrum (first bins)"),
				))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&component, "component", 0, "state component index (0=x ... 5=vz)")
	return cmd
}

func first(sol *dynamo.Solution) (float64, dynamo.State, bool) {
	if sol.Len() == 0 {
		return 0, nil, false
	}
	return sol.Ts[0], sol.Ys[0], true
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id|latest]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, sol, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				return storage.ExportJSONStdout(*meta, sol)
			}
			if err := storage.ExportJSON(out, *meta, sol); err != nil {
				return err
			}
			fmt.Printf("exported %d samples to %s\n", sol.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id|latest]",
		Short: "export run samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, sol, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = meta.ID + ".csv"
			}
			if err := storage.ExportCSV(out, sol); err != nil {
				return err
			}
			fmt.Printf("exported %d samples to %s\n", sol.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to <run_id>.csv)")
	return cmd
}

func newExportSVGCmd() *cobra.Command {
	var (
		out    string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "export-svg [run_id|latest]",
		Short: "draw the x-y track of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, sol, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = meta.ID + ".svg"
			}
			if err := export.WriteOrbitSVG(out, sol, width, height); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to <run_id>.svg)")
	cmd.Flags().IntVar(&width, "width", 600, "image width")
	cmd.Flags().IntVar(&height, "height", 600, "image height")
	return cmd
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay [run_id|latest]",
		Short: "play a stored run back in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, sol, err := loadRun(args[0])
			if err != nil {
				return err
			}
			title := meta.ID + "  " + meta.Dynamics + "/" + meta.Mode + "  " + strconv.Itoa(sol.Len()) + " samples"
			return viz.RunReplay(title, sol)
		},
	}
}
