package connectivity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestepContext_Lifecycle(t *testing.T) {
	ts := NewTimestepContext()
	assert.False(t, ts.IsSet())

	_, err := ts.Value()
	require.ErrorIs(t, err, ErrConfiguration)
	require.ErrorIs(t, ts.Freeze(), ErrConfiguration)

	require.NoError(t, ts.Set(1e-4))
	require.NoError(t, ts.Set(5e-5), "resetting before freeze is allowed")

	dt, err := ts.Value()
	require.NoError(t, err)
	assert.Equal(t, 5e-5, dt)

	require.NoError(t, ts.Freeze())
	assert.True(t, ts.Frozen())
	require.ErrorIs(t, ts.Set(1e-3), ErrConfiguration)

	dt, err = ts.Value()
	require.NoError(t, err)
	assert.Equal(t, 5e-5, dt, "frozen value must not change")
}

func TestTimestepContext_RejectsBadValues(t *testing.T) {
	for _, dt := range []float64{0, -1e-4, math.NaN(), math.Inf(1)} {
		ts := NewTimestepContext()
		require.ErrorIs(t, ts.Set(dt), ErrInvalidParameter, "dt=%v", dt)
		assert.False(t, ts.IsSet())
	}
}

func TestTimestepContext_NilValue(t *testing.T) {
	var ts *TimestepContext
	_, err := ts.Value()
	require.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, ts.IsSet())
}
