package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cowell/internal/config"
	"github.com/san-kum/cowell/pkg/rotation"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [dynamics]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dynamics := config.ListDynamics()
			if len(args) > 0 {
				dynamics = args[:1]
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DYNAMICS\tPRESET\tMODE\tT1\tEVENT")
			found := false
			for _, dyn := range dynamics {
				for _, name := range config.ListPresets(dyn) {
					p := config.GetPreset(dyn, name)
					event := p.Event
					if event == "" {
						event = "-"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%.4g\t%s\n", dyn, name, p.Mode, p.T1, event)
					found = true
				}
			}
			if !found {
				fmt.Printf("no presets for dynamics: %s\n", strings.Join(dynamics, ", "))
				return nil
			}
			return w.Flush()
		},
	}
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "list registered dynamics, solvers, controllers and events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "dynamics\t%s\n", strings.Join(reg.ListDynamics(), ", "))
			fmt.Fprintf(w, "solvers\t%s\n", strings.Join(reg.ListSolvers(), ", "))
			fmt.Fprintf(w, "controllers\t%s\n", strings.Join(reg.ListControllers(), ", "))
			fmt.Fprintf(w, "events\t%s\n", strings.Join(reg.ListEvents(), ", "))
			return w.Flush()
		},
	}
}

func newRotateCmd() *cobra.Command {
	var (
		degrees bool
		vector  []float64
	)
	cmd := &cobra.Command{
		Use:   "rotate [x|y|z] [angle]",
		Short: "print an elementary rotation matrix",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var angle float64
			if _, err := fmt.Sscanf(args[1], "%g", &angle); err != nil {
				return fmt.Errorf("angle: %w", err)
			}
			if degrees {
				angle *= math.Pi / 180
			}

			var m *mat.Dense
			switch strings.ToLower(args[0]) {
			case "x":
				m = rotation.X(angle)
			case "y":
				m = rotation.Y(angle)
			case "z":
				m = rotation.Z(angle)
			default:
				return fmt.Errorf("unknown axis: %s", args[0])
			}

			fmt.Printf("R%s(%.6g rad) =\n%.6f\n", strings.ToLower(args[0]), angle, mat.Formatted(m, mat.Prefix(""), mat.Squeeze()))
			if len(vector) > 0 {
				if len(vector) != 3 {
					return fmt.Errorf("vector needs 3 components, got %d", len(vector))
				}
				fmt.Printf("\nR·v = %.6f\n", rotation.Apply(m, vector))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&degrees, "deg", false, "angle is in degrees")
	cmd.Flags().Float64SliceVar(&vector, "vector", nil, "rotate this 3-vector")
	return cmd
}
