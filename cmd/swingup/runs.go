package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/swingup/internal/analysis"
	"github.com/san-kum/swingup/internal/chart"
	"github.com/san-kum/swingup/internal/export"
	"github.com/san-kum/swingup/internal/metrics"
	"github.com/san-kum/swingup/internal/storage"
)

var plotCaptions = map[string]string{
	"x":         "cart position (m)",
	"x_dot":     "cart velocity (m/s)",
	"theta":     "pole angle (rad)",
	"theta_dot": "pole angular velocity (rad/s)",
	"action":    "action",
	"reward":    "reward",
}

// loadRun reads the metadata and trace of a stored run.
func loadRun(cmd *cobra.Command, id string) (*storage.RunMetadata, storage.Trace, error) {
	ctx := context.Background()
	st, err := openStore(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	trace, err := st.LoadTrace(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if len(trace) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", id)
	}
	return meta, trace, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCTRL\tREWARD\tDT\tSTEPS\tRETURN\tEND")
	for _, run := range runs {
		end := "-"
		switch {
		case run.Terminated:
			end = "terminated"
		case run.Truncated:
			end = "truncated"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3f\t%d\t%.3f\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Controller,
			run.RewardMode,
			run.Dt,
			run.Steps,
			run.Return,
			end,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("controller: %s\n", meta.Controller)
	fmt.Printf("samples: %d\n\n", len(trace))

	columns := []string{"x", "theta", "action", "reward"}
	if column != "" {
		columns = []string{column}
	}
	for _, name := range columns {
		data, err := trace.Column(name)
		if err != nil {
			return err
		}
		caption := plotCaptions[name]
		if caption == "" {
			caption = name
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, trace, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	dir := chartDir
	if dir == "" {
		dir = filepath.Join(cfg.Run.DataDir, "charts", args[0])
	}
	paths, err := chart.SaveTrace(dir, trace)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, trace, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(storage.Columns); err != nil {
		return err
	}
	for _, r := range trace {
		row := []string{strconv.Itoa(r.Step)}
		for _, v := range []float64{r.Time, r.X, r.XDot, r.Theta, r.ThetaDot, r.Action, r.Reward} {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, meta, trace)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, trace, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoryToSVG(export.TipPath(trace, cfg.Env.PoleLength), 800, 400, "#0000ff")
	if svg == "" {
		return fmt.Errorf("run %s is too short for a path", args[0])
	}
	if svgOut == "" {
		_, err = fmt.Print(svg)
		return err
	}
	return os.WriteFile(svgOut, []byte(svg), 0644)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("controller: %s  steps: %d  return: %.3f\n\n", meta.Controller, len(trace), meta.Return)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range []string{"x", "x_dot", "theta", "theta_dot", "action", "reward"} {
		data, err := trace.Column(name)
		if err != nil {
			return err
		}
		s := analysis.ColumnStats(data)
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", name, s.Mean, s.Std, s.Min, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	theta, err := trace.Column("theta")
	if err != nil {
		return err
	}
	freq, err := analysis.DominantFrequency(theta, meta.Dt)
	if err != nil {
		fmt.Printf("frequency analysis skipped: %v\n", err)
	} else {
		ps := analysis.PowerSpectrum(theta)
		plotData := ps[1:]
		if len(plotData) > 1 {
			fmt.Println(asciigraph.Plot(plotData,
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum (theta)"),
			))
			fmt.Println()
		}
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.3f s\n", 1.0/freq)
		}
	}

	if t, ok := analysis.SwingUpTime(trace, metrics.DefaultUprightAngle); ok {
		fmt.Printf("upright from t = %.2f s to the end\n", t)
	} else {
		fmt.Println("pole does not settle upright")
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
