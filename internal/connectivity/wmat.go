package connectivity

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nvandessel/spikewire/internal/models"
)

// commentPrefix marks a weight-matrix comment line. Only the first byte of a
// line is checked.
const commentPrefix = '%'

// maxCapacityHint bounds the preallocation taken from a header's nnz field.
const maxCapacityHint = 1 << 26

// DelayParams controls delay staggering for weight-matrix rows.
type DelayParams struct {
	// MinDelay is the nominal delay in seconds.
	MinDelay float64

	// Timestep is the simulation timestep in seconds.
	Timestep float64

	// SkipGroups is the number of staggering buckets. 1 disables staggering.
	SkipGroups int
}

// Validate checks that every staggered delay stays positive.
func (p DelayParams) Validate() error {
	const method = "DelayParams"

	if !(p.Timestep > 0) || math.IsInf(p.Timestep, 0) {
		return invalidf(method, "timestep must be positive and finite, got %g", p.Timestep)
	}
	if !(p.MinDelay > 0) || math.IsInf(p.MinDelay, 0) {
		return invalidf(method, "min delay must be positive and finite, got %g", p.MinDelay)
	}
	if p.SkipGroups < 1 {
		return invalidf(method, "skip group count must be at least 1, got %d", p.SkipGroups)
	}
	if lowest := p.MinDelay - float64(p.SkipGroups-1)*p.Timestep; !(lowest > 0) {
		return invalidf(method, "min delay %g is too short for %d skip groups of %g", p.MinDelay, p.SkipGroups, p.Timestep)
	}
	return nil
}

// Delay returns the delay for the data row with the given 1-based ordinal:
// MinDelay - (ordinal mod SkipGroups) * Timestep.
func (p DelayParams) Delay(ordinal int) float64 {
	return p.MinDelay - float64(ordinal%p.SkipGroups)*p.Timestep
}

// LoadWeightMatrix reads a sparse weight matrix in coordinate form.
//
// Lines starting with '%' are skipped. The first remaining line is a header
// and is skipped; every later line must be "<pre> <post> <weight>" with
// 1-based indices, which are converted to 0-based. Row i (1-based, data
// rows only) gets delay MinDelay - (i mod SkipGroups)*Timestep.
//
// The result carries Pre, Post, Weights and Delays in file order and no
// plasticity tags. On any error the returned Connection is nil.
func LoadWeightMatrix(path string, minDelay, timestep float64, skipGroups int) (*models.Connection, error) {
	params := DelayParams{MinDelay: minDelay, Timestep: timestep, SkipGroups: skipGroups}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	defer f.Close()

	conn, err := parseWeightMatrix(f, path, params)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ParseWeightMatrix is LoadWeightMatrix over an already open reader.
func ParseWeightMatrix(r io.Reader, params DelayParams) (*models.Connection, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return parseWeightMatrix(r, "", params)
}

func parseWeightMatrix(r io.Reader, path string, params DelayParams) (*models.Connection, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		pre, post       []int
		weights, delays []float64
		lineNo          int
		sawHeader       bool
		ordinal         int
	)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if len(line) > 0 && line[0] == commentPrefix {
			continue
		}

		if !sawHeader {
			sawHeader = true
			if hint := capacityHint(line); hint > 0 {
				pre = make([]int, 0, hint)
				post = make([]int, 0, hint)
				weights = make([]float64, 0, hint)
				delays = make([]float64, 0, hint)
			}
			continue
		}

		i, j, w, err := parseRecord(line)
		if err != nil {
			return nil, &RecordError{Path: path, Line: lineNo, Err: err}
		}

		ordinal++
		pre = append(pre, i-1)
		post = append(post, j-1)
		weights = append(weights, w)
		delays = append(delays, params.Delay(ordinal))
	}
	if err := scanner.Err(); err != nil {
		return nil, &RecordError{Path: path, Line: lineNo + 1, Err: fmt.Errorf("%v: %w", err, ErrMalformedRecord)}
	}

	if !sawHeader {
		return nil, &RecordError{Path: path, Line: lineNo, Err: fmt.Errorf("missing header line: %w", ErrMalformedRecord)}
	}

	if pre == nil {
		pre, post = []int{}, []int{}
		weights, delays = []float64{}, []float64{}
	}

	return &models.Connection{
		Pre:         pre,
		Post:        post,
		Weights:     weights,
		Delays:      delays,
		DelayRange:  models.Range{Min: minOf(delays, params.MinDelay), Max: maxOf(delays, params.MinDelay)},
		WeightRange: models.Range{Min: minOf(weights, 0), Max: maxOf(weights, 0)},
	}, nil
}

// parseRecord splits a data line into 1-based indices and a weight.
func parseRecord(line string) (int, int, float64, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 fields <pre> <post> <weight>, got %d: %w", len(fields), ErrMalformedRecord)
	}

	i, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("presynaptic index %q: %w", fields[0], ErrMalformedRecord)
	}
	j, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("postsynaptic index %q: %w", fields[1], ErrMalformedRecord)
	}
	w, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, 0, 0, fmt.Errorf("weight %q: %w", fields[2], ErrMalformedRecord)
	}

	if i < 1 {
		return 0, 0, 0, fmt.Errorf("presynaptic index %d is not 1-based: %w", i, ErrOutOfRange)
	}
	if j < 1 {
		return 0, 0, 0, fmt.Errorf("postsynaptic index %d is not 1-based: %w", j, ErrOutOfRange)
	}

	return i, j, w, nil
}

// capacityHint reads nnz from a "rows cols nnz" header. Anything else
// yields 0; the header content never affects parsing.
func capacityHint(header string) int {
	fields := strings.Fields(header)
	if len(fields) != 3 {
		return 0
	}
	for _, f := range fields[:2] {
		if _, err := strconv.Atoi(f); err != nil {
			return 0
		}
	}
	nnz, err := strconv.Atoi(fields[2])
	if err != nil || nnz <= 0 {
		return 0
	}
	return min(nnz, maxCapacityHint)
}

// CheckBounds verifies every index against the declared population sizes.
// The first offending synapse is reported.
func CheckBounds(conn *models.Connection, preSize, postSize int) error {
	if conn == nil {
		return fmt.Errorf("CheckBounds: connection is nil: %w", ErrInvalidParameter)
	}
	if len(conn.Post) != len(conn.Pre) ||
		(conn.Weights != nil && len(conn.Weights) != len(conn.Pre)) ||
		(conn.Delays != nil && len(conn.Delays) != len(conn.Pre)) {
		return fmt.Errorf("CheckBounds: parallel slices differ in length (pre=%d post=%d weights=%d delays=%d): %w",
			len(conn.Pre), len(conn.Post), len(conn.Weights), len(conn.Delays), ErrInvalidParameter)
	}
	for s := range conn.Pre {
		if i := conn.Pre[s]; i < 0 || i >= preSize {
			return fmt.Errorf("synapse %d: presynaptic index %d outside [0, %d): %w", s, i, preSize, ErrOutOfRange)
		}
		if j := conn.Post[s]; j < 0 || j >= postSize {
			return fmt.Errorf("synapse %d: postsynaptic index %d outside [0, %d): %w", s, j, postSize, ErrOutOfRange)
		}
	}
	return nil
}

func minOf(xs []float64, empty float64) float64 {
	if len(xs) == 0 {
		return empty
	}
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(xs []float64, empty float64) float64 {
	if len(xs) == 0 {
		return empty
	}
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Max(m, x)
	}
	return m
}
