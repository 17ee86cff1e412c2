// Package report summarizes assembled synapse groups for the CLI and for
// the per-build CSV.
package report

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/models"
)

// GroupStats is one row of the connectivity report.
type GroupStats struct {
	Label          string  `csv:"pair" json:"pair"`
	GroupID        int     `csv:"group" json:"group"`
	Pre            string  `csv:"pre" json:"pre"`
	Post           string  `csv:"post" json:"post"`
	Synapses       int     `csv:"synapses" json:"synapses"`
	InDegreeMean   float64 `csv:"in_degree_mean" json:"in_degree_mean"`
	InDegreeStdDev float64 `csv:"in_degree_stddev" json:"in_degree_stddev"`
	InDegreeMin    int     `csv:"in_degree_min" json:"in_degree_min"`
	InDegreeMax    int     `csv:"in_degree_max" json:"in_degree_max"`
	WeightMean     float64 `csv:"weight_mean" json:"weight_mean"`
	WeightMin      float64 `csv:"weight_min" json:"weight_min"`
	WeightMax      float64 `csv:"weight_max" json:"weight_max"`
	DelayMinSteps  int     `csv:"delay_min_steps" json:"delay_min_steps"`
	DelayMaxSteps  int     `csv:"delay_max_steps" json:"delay_max_steps"`
	DelayBuckets   int     `csv:"delay_buckets" json:"delay_buckets"`
	Plastic        bool    `csv:"plastic" json:"plastic"`
}

// Summarize computes the statistics of g. In-degrees are counted over
// every neuron of post, so unconnected neurons contribute zeros.
func Summarize(label string, g *engine.SynapseGroup, pre, post models.Population) GroupStats {
	s := GroupStats{
		Label:    label,
		GroupID:  g.ID,
		Pre:      pre.Name,
		Post:     post.Name,
		Synapses: g.Len(),
		Plastic:  len(g.Plasticity) > 0,
	}

	if n := post.Size(); n > 0 {
		counts := make([]float64, n)
		for _, j := range g.PostIdx {
			if j >= 0 && j < n {
				counts[j]++
			}
		}
		s.InDegreeMean, s.InDegreeStdDev = stat.PopMeanStdDev(counts, nil)
		s.InDegreeMin = int(floats.Min(counts))
		s.InDegreeMax = int(floats.Max(counts))
	}

	if len(g.Weights) > 0 {
		s.WeightMean = stat.Mean(g.Weights, nil)
		s.WeightMin = floats.Min(g.Weights)
		s.WeightMax = floats.Max(g.Weights)
	}

	if len(g.DelaySteps) > 0 {
		s.DelayMinSteps = slices.Min(g.DelaySteps)
		s.DelayMaxSteps = slices.Max(g.DelaySteps)
		buckets := make(map[int]struct{})
		for _, d := range g.DelaySteps {
			buckets[d] = struct{}{}
		}
		s.DelayBuckets = len(buckets)
	}
	return s
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []GroupStats) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing report csv: %w", err)
	}
	return nil
}

// ReadCSV parses a report written by WriteCSV.
func ReadCSV(r io.Reader) ([]GroupStats, error) {
	var rows []GroupStats
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading report csv: %w", err)
	}
	return rows, nil
}

// Table renders rows as aligned text for terminal output.
func Table(w io.Writer, rows []GroupStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIR\tGROUP\tPRE -> POST\tSYNAPSES\tIN-DEGREE\tWEIGHT\tDELAY (steps)\tPLASTIC")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s -> %s\t%d\t%.2f ± %.2f [%d, %d]\t%.4g\t%d..%d (%d)\t%t\n",
			r.Label, r.GroupID, r.Pre, r.Post, r.Synapses,
			r.InDegreeMean, r.InDegreeStdDev, r.InDegreeMin, r.InDegreeMax,
			r.WeightMean,
			r.DelayMinSteps, r.DelayMaxSteps, r.DelayBuckets,
			r.Plastic)
	}
	return tw.Flush()
}
