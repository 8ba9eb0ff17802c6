package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/seals/internal/automation"
	"github.com/san-kum/seals/internal/experiment"
	"github.com/san-kum/seals/internal/export"
	"github.com/san-kum/seals/internal/snapshot"
	"github.com/san-kum/seals/internal/storage"
	"github.com/san-kum/seals/internal/viz"
	"github.com/spf13/cobra"
)

func batchCommand() *cobra.Command {
	var (
		withDB   bool
		workers  int
		best     string
		maximize bool
	)
	cmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every job of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			logger, err := newLogger(os.Stderr)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			logger.Info("batch", "scenario", sc.Name, "steps", len(sc.Steps))
			results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), automation.BatchOptions{
				Store:    storage.New(dataDir),
				FrameDB:  withDB,
				Logger:   logger,
				Hostname: hostname(),
				Workers:  workers,
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tPARAM\tVALUE\tPOINTS\tVOLUME\tEDGE_CV\tTIME")
			for _, r := range results {
				param, value := "-", "-"
				if r.Job.Param != "" {
					param, value = r.Job.Param, fmt.Sprintf("%.4g", r.Job.Value)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%.4f\t%v\n",
					r.Job.RunID, param, value,
					r.Result.Points, r.Result.Volume, r.Result.Metrics["edge_cv"],
					r.Result.Elapsed.Round(time.Millisecond))
			}
			if ferr := w.Flush(); err == nil {
				err = ferr
			}
			if best != "" {
				if r, ok := automation.Best(results, best, maximize); ok {
					fmt.Printf("\nbest %s: %s (%.6f)\n", best, r.Job.RunID, r.Result.Metrics[best])
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&withDB, "db", false, "mirror frames into frames.db")
	cmd.Flags().IntVar(&workers, "workers", 1, "runs to execute at once")
	cmd.Flags().StringVar(&best, "best", "", "report the run with the lowest value of this metric")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "with --best, report the highest value instead")
	return cmd
}

// snapshotSource reads the frames named by arg, which is either a snapshot
// file or the id of a stored run.
func snapshotSource(arg string) ([]*snapshot.Frame, string, error) {
	path := arg
	if st, err := os.Stat(arg); err != nil || st.IsDir() {
		path = storage.New(dataDir).SnapshotPath(arg)
	}
	frames, err := storage.ReadSnapshots(path)
	if err != nil {
		return nil, "", err
	}
	if len(frames) == 0 {
		return nil, "", fmt.Errorf("%s holds no frames", path)
	}
	return frames, path, nil
}

func inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file|run_id]",
		Short: "print the frame headers of a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, path, err := snapshotSource(args[0])
			if err != nil {
				return err
			}
			first := frames[0]
			fmt.Printf("file: %s\n", path)
			fmt.Printf("type: %s (%dD), version %d\n", first.TypeHint, first.Dim, first.Version)
			fmt.Printf("seed: %d  host: %s\n", first.Seed, first.Hostname)
			fmt.Printf("attraction %.4g  repulsion %.4g  damping %.4g  noise %.4g  dt %.4g  anisotropy %v\n",
				first.Attraction, first.Repulsion, first.Damping, first.Noise, first.DT, first.Anisotropy)
			if b := first.Boundary; b != nil {
				fmt.Printf("boundary: %s radius %.4g extent %.4g offset %t\n", b.Kind, b.Radius, b.Extent, b.Offset)
			}
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FRAME\tSTEPS\tPOINTS\tEDGES\tVOLUME\tELAPSED\tTIME")
			for i, f := range frames {
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.6g\t%v\t%s\n",
					i, f.Steps, len(f.Positions), len(viz.Edges(f)), f.Volume,
					f.Elapsed.Round(time.Millisecond), f.Timestamp.Format("2006-01-02 15:04:05"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			dbPath := filepath.Join(filepath.Dir(path), "frames.db")
			db, err := storage.ReadFrameDB(dbPath)
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := db.Count()
			if err != nil {
				return err
			}
			fmt.Printf("\nframe db: %s (%d frames)\n", dbPath, n)
			return nil
		},
	}
}

func plotCommand() *cobra.Command {
	var column string
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a telemetry column of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			rows, err := st.LoadTelemetry(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("strategy: %s (%dD)\n", meta.Strategy, meta.Dim)
			fmt.Printf("samples: %d\n\n", len(rows))

			graph, err := viz.PlotTelemetry(rows, column, width, height)
			if err != nil {
				return err
			}
			fmt.Println(graph)
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", "volume", "telemetry column ("+strings.Join(viz.Columns(), ", ")+")")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 12, "plot height")
	return cmd
}

func exportCommand() *cobra.Command {
	var (
		format string
		frame  int
		all    bool
		output string
		size   int
		dots   float64
	)
	cmd := &cobra.Command{
		Use:   "export [file|run_id]",
		Short: "export a frame as SVG or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, _, err := snapshotSource(args[0])
			if err != nil {
				return err
			}
			idx := frame
			if idx < 0 {
				idx += len(frames)
			}
			if idx < 0 || idx >= len(frames) {
				return fmt.Errorf("frame %d out of range (%d frames)", frame, len(frames))
			}

			var w io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "svg":
				opts := export.DefaultSVGOptions()
				opts.Width, opts.Height = size, size
				opts.PointRadius = dots
				err = export.SVG(w, frames[idx], opts)
			case "json":
				if all {
					err = export.JSON(w, frames...)
				} else {
					err = export.JSON(w, frames[idx])
				}
			default:
				return fmt.Errorf("unknown format: %s (svg, json)", format)
			}
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(os.Stderr, "exported frame %d to %s\n", idx, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "svg", "output format (svg, json)")
	cmd.Flags().IntVar(&frame, "frame", -1, "frame index, negative counts from the end")
	cmd.Flags().BoolVar(&all, "all", false, "export every frame (json only)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&size, "size", 800, "svg width and height")
	cmd.Flags().Float64Var(&dots, "dots", 0, "svg point radius, 0 hides points")
	return cmd
}

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDIM\tSTRATEGY\tITERATIONS\tMAX_POINTS\tBOUNDARY")
			for _, name := range reg.ListPresets() {
				cfg, err := reg.GetPreset(name)
				if err != nil {
					return err
				}
				bound := "-"
				if cfg.HasBoundary() {
					bound = cfg.Boundary.Kind
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%s\n", name, cfg.Dim, cfg.Strategy, cfg.Iterations, cfg.MaxPoints, bound)
			}
			return w.Flush()
		},
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list strategies and stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			fmt.Println("strategies:")
			for _, d := range []int{2, 3} {
				fmt.Printf("  %dD: %s\n", d, strings.Join(reg.ListStrategies(d), ", "))
			}
			fmt.Println()

			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTRATEGY\tDIM\tTIME\tSTEPS\tPOINTS\tVOLUME\tFRAMES")
			for _, run := range runs {
				id := run.ID
				if run.Cancelled {
					id += " (cancelled)"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%.4g\t%d\n",
					id, run.Strategy, run.Dim,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Steps, run.Points, run.Volume, run.Frames)
			}
			return w.Flush()
		},
	}
}
