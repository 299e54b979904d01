package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/cowell/internal/batch"
	"github.com/san-kum/cowell/internal/metrics"
	"github.com/san-kum/cowell/internal/viz"
	"github.com/san-kum/cowell/pkg/gravity"
)

func newBatchCmd() *cobra.Command {
	var (
		flags    scenarioFlags
		runs     int
		sigmaPos float64
		sigmaVel float64
		seed     uint64
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "batch [dynamics]",
		Short: "propagate a Monte Carlo ensemble around one initial state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dynamics := ""
			if len(args) > 0 {
				dynamics = args[0]
			}
			cfg, err := flags.load(cmd.Flags(), dynamics)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("mode") {
				cfg.Mode = "final"
			}
			d, req, opts, err := cfg.Build(reg)
			if err != nil {
				return err
			}

			mu := d.Args().FloatOr(gravity.KeyMu, 1)
			x0s := batch.Perturb(req.X0, runs, sigmaPos, sigmaVel, seed)
			pool := batch.NewPool(settings.Workers, logger, batch.WithMetrics(func() []metrics.Metric {
				return metrics.Standard(mu)
			}))

			start := time.Now()
			outcomes, err := pool.Run(cmd.Context(), d, req, x0s, opts...)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			if verbose {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "RUN\tRESULT\tT FINAL\tSTEPS\tENERGY DRIFT\tMIN RADIUS")
				for _, out := range outcomes {
					if out.Solution == nil {
						fmt.Fprintf(w, "%d\t%v\t-\t-\t-\t-\n", out.Index, out.Err)
						continue
					}
					tf, _, _ := out.Solution.Final()
					fmt.Fprintf(w, "%d\t%s\t%.6g\t%d\t%.3e\t%.6g\n",
						out.Index,
						out.Solution.Result,
						tf,
						out.Solution.Stats.NumSteps,
						out.Metrics["energy_drift"],
						out.Metrics["min_radius"],
					)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Println()
			}

			s := batch.Summarize(outcomes)
			rows := map[string]string{
				"runs":    strconv.Itoa(s.Runs),
				"workers": strconv.Itoa(settings.Workers),
				"elapsed": elapsed.Round(time.Millisecond).String(),
			}
			results := make([]string, 0, len(s.Results))
			for r := range s.Results {
				results = append(results, r)
			}
			sort.Strings(results)
			for _, r := range results {
				rows["result "+r] = strconv.Itoa(s.Results[r])
			}
			if s.Events > 0 {
				rows["mean event time"] = fmt.Sprintf("%.6g", s.MeanEventTime)
			}
			for k, val := range s.Metrics {
				rows["mean "+k] = fmt.Sprintf("%.3e", val)
			}
			fmt.Println(viz.Summary("ensemble of "+cfg.Dynamics, rows))
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&runs, "runs", 32, "ensemble size")
	cmd.Flags().Float64Var(&sigmaPos, "sigma-pos", 1e-3, "standard deviation of position noise")
	cmd.Flags().Float64Var(&sigmaVel, "sigma-vel", 1e-3, "standard deviation of velocity noise")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print one row per run")
	return cmd
}
