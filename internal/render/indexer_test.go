package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexer_FirstIndexAfterReset(t *testing.T) {
	ix := NewIndexer()
	assert.Equal(t, 1+Stride, ix.Advance())
	assert.Equal(t, 1+2*Stride, ix.Advance())

	ix.Reset()
	assert.Equal(t, 1+Stride, ix.Advance())
}

func TestIndexer_Deterministic(t *testing.T) {
	a, b := NewIndexer(), NewIndexer()
	for i := 0; i < 1000; i++ {
		assert.Equal(t, a.Advance(), b.Advance())
	}
}

func TestIndexer_WraparoundVisitsEveryResidue(t *testing.T) {
	if testing.Short() {
		t.Skip("walks the full modulus")
	}
	ix := NewIndexer()
	start := ix.Current()
	seen := make([]uint64, (Modulus+63)/64)
	for i := 0; i < Modulus; i++ {
		v := ix.Advance()
		if v < 0 || v >= Modulus {
			t.Fatalf("index %d out of range at step %d", v, i)
		}
		word, bit := v/64, uint(v%64)
		if seen[word]&(1<<bit) != 0 {
			t.Fatalf("index %d repeated at step %d", v, i)
		}
		seen[word] |= 1 << bit
	}
	assert.Equal(t, start, ix.Current())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, idx := range []int{1, 255, 256, 65535, 65536, 464652, Modulus - 1} {
		c := EncodeIndex(idx)
		assert.Equal(t, uint8(0xff), c.A)
		assert.Equal(t, idx, DecodeColor(c), "index %d", idx)
	}
	assert.Equal(t, color.RGBA{R: 7, G: 23, B: 12, A: 0xff}, EncodeIndex(464652))
}

func TestDecodeColor_TranslucentIsNoCall(t *testing.T) {
	assert.Equal(t, 0, DecodeColor(color.RGBA{}))
	assert.Equal(t, 0, DecodeColor(color.RGBA{R: 7, G: 23, B: 12, A: 0xfe}))
}

func TestDecodeColor_ReducesModulo(t *testing.T) {
	// 0xFFFFFF is above Modulus and wraps.
	assert.Equal(t, 0xFFFFFF%Modulus, DecodeColor(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}))
}
