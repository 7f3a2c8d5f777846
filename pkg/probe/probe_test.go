package probe

import (
	"math"
	"sync"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlus100(t *testing.T) {
	tests := []struct {
		name  string
		input uint32
		want  uint32
	}{
		{"zero", 0, 100},
		{"fifty", 50, 150},
		{"boundary", 4294967195, 4294967295},
		{"first wrap", 4294967196, 0},
		{"max", 4294967295, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plus100(tt.input))
		})
	}
}

func TestPlus100MatchesWideArithmetic(t *testing.T) {
	f := func(input uint32) bool {
		want := uint32((uint64(input) + 100) % (1 << 32))
		return Plus100(input) == want
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestPlus100NoWrapBelowThreshold(t *testing.T) {
	f := func(input uint32) bool {
		if input > math.MaxUint32-100 {
			input -= 100
		}
		return uint64(Plus100(input)) == uint64(input)+100
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestOverflows(t *testing.T) {
	assert.False(t, Overflows(0))
	assert.False(t, Overflows(4294967195))
	assert.True(t, Overflows(4294967196))
	assert.True(t, Overflows(math.MaxUint32))
}

func TestPlus100Deterministic(t *testing.T) {
	const workers = 16

	inputs := []uint32{0, 50, 4294967195, 4294967295}
	var wg sync.WaitGroup
	results := make([][]uint32, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				for _, in := range inputs {
					results[w] = append(results[w], Plus100(in))
				}
			}
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		assert.Equal(t, results[0], results[w], "worker %d disagrees", w)
	}
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "plus_100", ExportName)
	assert.Equal(t, uint32(100), Offset)
}
