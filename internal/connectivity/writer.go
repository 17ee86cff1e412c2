package connectivity

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/nvandessel/spikewire/internal/models"
)

// matrixMarketBanner opens every weight matrix written by WriteWeightMatrix.
// It is a comment line, so the loader skips it.
const matrixMarketBanner = "%%MatrixMarket matrix coordinate real general"

// WriteWeightMatrix writes conn in the coordinate format read by
// LoadWeightMatrix: a banner comment, a "rows cols nnz" header, then one
// 1-based "<pre> <post> <weight>" row per synapse.
//
// Connections without per-synapse weights must carry a fixed WeightRange.
func WriteWeightMatrix(w io.Writer, conn *models.Connection, preSize, postSize int) error {
	if err := CheckBounds(conn, preSize, postSize); err != nil {
		return fmt.Errorf("WriteWeightMatrix: %w", err)
	}
	if !conn.HasWeights() && !conn.WeightRange.IsFixed() {
		return invalidf("WriteWeightMatrix", "connection has neither per-synapse weights nor a fixed weight")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, matrixMarketBanner)
	fmt.Fprintf(bw, "%d %d %d\n", preSize, postSize, conn.Len())

	buf := make([]byte, 0, 64)
	for s := 0; s < conn.Len(); s++ {
		weight := conn.WeightRange.Min
		if conn.HasWeights() {
			weight = conn.Weights[s]
		}
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(conn.Pre[s]+1), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(conn.Post[s]+1), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, weight, 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write synapse %d: %w", s, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush weight matrix: %w", err)
	}
	return nil
}

// QuantizeDelays converts delays in seconds to whole timesteps, rounding to
// the nearest step. Every delay is at least one step.
func QuantizeDelays(delays []float64, dt float64) []int {
	steps := make([]int, len(delays))
	for i, d := range delays {
		steps[i] = DelaySteps(d, dt)
	}
	return steps
}

// DelaySteps converts a single delay in seconds to whole timesteps.
func DelaySteps(delay, dt float64) int {
	return max(1, int(math.Round(delay/dt)))
}
