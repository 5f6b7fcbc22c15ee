//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUintptrToInt64(t *testing.T) {
	got, err := UintptrToInt64(4096)
	assert.NoError(t, err)
	assert.Equal(t, int64(4096), got)
}

func TestMulSize(t *testing.T) {
	tests := []struct {
		name     string
		elemSize uintptr
		n        int
		want     uintptr
		wantErr  bool
	}{
		{name: "zero count", elemSize: 8, n: 0, want: 0},
		{name: "zero size", elemSize: 0, n: 100, want: 0},
		{name: "simple", elemSize: 24, n: 10, want: 240},
		{name: "negative count", elemSize: 8, n: -1, wantErr: true},
		{name: "overflow", elemSize: math.MaxUint32 + 1, n: math.MaxInt, wantErr: true},
		{name: "exceeds int", elemSize: 2, n: math.MaxInt/2 + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulSize(tt.elemSize, tt.n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
