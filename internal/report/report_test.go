package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/nvandessel/spikewire/internal/engine"
	"github.com/nvandessel/spikewire/internal/models"
)

func testGroup() (*engine.SynapseGroup, models.Population, models.Population) {
	pre := models.Population{ID: 0, Name: "excitatory", Kind: models.PopulationExcitatory, Shape: [2]int{1, 4}}
	post := models.Population{ID: 1, Name: "inhibitory", Kind: models.PopulationInhibitory, Shape: [2]int{1, 3}}
	g := &engine.SynapseGroup{
		ID:         3,
		Pre:        pre.ID,
		Post:       post.ID,
		PreIdx:     []int{0, 1, 2, 3},
		PostIdx:    []int{0, 0, 1, 1},
		Weights:    []float64{1, 2, 3, 6},
		DelaySteps: []int{14, 13, 15, 14},
	}
	return g, pre, post
}

func TestSummarize(t *testing.T) {
	g, pre, post := testGroup()
	s := Summarize("ei", g, pre, post)

	if s.Label != "ei" || s.GroupID != 3 || s.Pre != "excitatory" || s.Post != "inhibitory" {
		t.Errorf("identity fields = %+v", s)
	}
	if s.Synapses != 4 {
		t.Errorf("Synapses = %d, want 4", s.Synapses)
	}

	// In-degrees over three neurons: 2, 2, 0.
	if math.Abs(s.InDegreeMean-4.0/3.0) > 1e-12 {
		t.Errorf("InDegreeMean = %g, want 4/3", s.InDegreeMean)
	}
	wantStd := math.Sqrt(((2-4.0/3)*(2-4.0/3)*2 + (4.0/3)*(4.0/3)) / 3)
	if math.Abs(s.InDegreeStdDev-wantStd) > 1e-12 {
		t.Errorf("InDegreeStdDev = %g, want %g", s.InDegreeStdDev, wantStd)
	}
	if s.InDegreeMin != 0 || s.InDegreeMax != 2 {
		t.Errorf("in-degree range = [%d, %d], want [0, 2]", s.InDegreeMin, s.InDegreeMax)
	}

	if s.WeightMean != 3 || s.WeightMin != 1 || s.WeightMax != 6 {
		t.Errorf("weights = mean %g [%g, %g], want 3 [1, 6]", s.WeightMean, s.WeightMin, s.WeightMax)
	}
	if s.DelayMinSteps != 13 || s.DelayMaxSteps != 15 || s.DelayBuckets != 3 {
		t.Errorf("delays = %d..%d (%d), want 13..15 (3)", s.DelayMinSteps, s.DelayMaxSteps, s.DelayBuckets)
	}
	if s.Plastic {
		t.Error("Plastic = true for untagged group")
	}
}

func TestSummarize_EmptyGroup(t *testing.T) {
	_, pre, post := testGroup()
	s := Summarize("ee", &engine.SynapseGroup{ID: 0}, pre, post)

	if s.Synapses != 0 || s.InDegreeMean != 0 || s.InDegreeMax != 0 {
		t.Errorf("empty group stats = %+v", s)
	}
	if s.DelayBuckets != 0 || s.WeightMean != 0 {
		t.Errorf("empty group weights/delays = %+v", s)
	}
}

func TestSummarize_Plastic(t *testing.T) {
	g, pre, post := testGroup()
	g.Plasticity = []models.PlasticityTag{{Name: "ee-stdp", Rule: models.RuleWeightDependentSTDP}}

	if !Summarize("ee", g, pre, post).Plastic {
		t.Error("Plastic = false for tagged group")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	g, pre, post := testGroup()
	rows := []GroupStats{Summarize("ei", g, pre, post)}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasPrefix(header, "pair,group,pre,post,synapses,in_degree_mean") {
		t.Errorf("header = %q", header)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].Label != "ei" || got[0].Synapses != 4 || got[0].DelayBuckets != 3 {
		t.Errorf("row = %+v", got[0])
	}
}

func TestTable(t *testing.T) {
	g, pre, post := testGroup()

	var buf bytes.Buffer
	if err := Table(&buf, []GroupStats{Summarize("ei", g, pre, post)}); err != nil {
		t.Fatalf("Table() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"PAIR", "excitatory -> inhibitory", "13..15 (3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
