package connectivity

import (
	"fmt"
	"math/rand/v2"

	"github.com/nvandessel/spikewire/internal/models"
)

// Connector builds the Connection for one ordered population pair.
type Connector interface {
	// Connect returns a fully validated Connection or an error; it never
	// returns a partial descriptor.
	Connect(pre, post models.Population) (*models.Connection, error)

	// Kind names the connector for logs and decision traces.
	Kind() string
}

// SparseConnector connects populations with GenerateSparse and applies a
// uniform weight and delay policy.
type SparseConnector struct {
	Rand       *rand.Rand
	Sparseness float64
	Weight     models.Range
	Delay      models.Range
}

// Kind implements Connector.
func (c *SparseConnector) Kind() string { return "sparse" }

// Connect implements Connector.
func (c *SparseConnector) Connect(pre, post models.Population) (*models.Connection, error) {
	preIdx, postIdx, err := GenerateSparse(c.Rand, pre.Size(), post.Size(), c.Sparseness)
	if err != nil {
		return nil, err
	}
	return &models.Connection{
		Pre:         preIdx,
		Post:        postIdx,
		WeightRange: c.Weight,
		DelayRange:  c.Delay,
	}, nil
}

// FileConnector connects populations from a weight-matrix file. The
// timestep is read from Timestep when Connect runs.
type FileConnector struct {
	Path       string
	MinDelay   float64
	SkipGroups int
	Timestep   *TimestepContext
}

// Kind implements Connector.
func (c *FileConnector) Kind() string { return "file" }

// Connect implements Connector. Indices are checked against the declared
// population sizes; the file itself carries no authoritative bounds.
func (c *FileConnector) Connect(pre, post models.Population) (*models.Connection, error) {
	dt, err := c.Timestep.Value()
	if err != nil {
		return nil, err
	}

	conn, err := LoadWeightMatrix(c.Path, c.MinDelay, dt, c.SkipGroups)
	if err != nil {
		return nil, err
	}
	if err := CheckBounds(conn, pre.Size(), post.Size()); err != nil {
		return nil, fmt.Errorf("%s: %w", c.Path, err)
	}
	return conn, nil
}
