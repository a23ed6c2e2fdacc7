package rdf2csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGolden walks testdata/{scenario}/ directories. Each holds data.nq,
// mapping.ttl and the expected.csv the conversion must produce, on every
// store backend.
func TestGolden(t *testing.T) {
	scenarios, err := os.ReadDir("testdata")
	if err != nil {
		t.Skip("no testdata directory found")
	}

	backends := map[string][]Option{
		"sqlite": {WithPageSize(2), WithBatchSize(3)},
		"memory": {WithMemoryStore()},
	}

	for _, sc := range scenarios {
		if !sc.IsDir() {
			continue
		}
		dir := filepath.Join("testdata", sc.Name())
		want, err := os.ReadFile(filepath.Join(dir, "expected.csv"))
		if err != nil {
			continue
		}

		for backend, opts := range backends {
			t.Run(sc.Name()+"/"+backend, func(t *testing.T) {
				t.Parallel()
				c, err := New(opts...)
				require.NoError(t, err)
				t.Cleanup(func() { c.Close() })

				out := filepath.Join(t.TempDir(), "output.csv")
				_, err = c.Run(context.Background(),
					filepath.Join(dir, "data.nq"),
					filepath.Join(dir, "mapping.ttl"),
					out)
				require.NoError(t, err)

				got, err := os.ReadFile(out)
				require.NoError(t, err)
				assert.Equal(t, string(want), string(got))
			})
		}
	}
}
