package render

import "image/color"

const (
	// Modulus is the largest prime below 2^24, so every index fits the
	// 24-bit color space of the shadow surface.
	Modulus = 16777213

	// Stride is co-prime with Modulus: advancing visits every residue before
	// repeating, and consecutive calls land far apart in color space.
	Stride = 464651
)

// Indexer assigns call indices within one rendering pass.
// Index 0 is reserved for "no call".
type Indexer struct {
	counter int
}

// NewIndexer creates an indexer positioned at the start of a run.
func NewIndexer() *Indexer {
	ix := &Indexer{}
	ix.Reset()
	return ix
}

// Reset rewinds to the start of a run. The first Advance after Reset always
// returns the same value.
func (ix *Indexer) Reset() {
	ix.counter = 1
}

// Advance moves to and returns the next index.
func (ix *Indexer) Advance() int {
	ix.counter = (ix.counter + Stride) % Modulus
	return ix.counter
}

// Current returns the most recently assigned index.
func (ix *Indexer) Current() int {
	return ix.counter
}

// EncodeIndex returns the opaque shadow color for idx:
// R = idx/65536 % 256, G = idx/256 % 256, B = idx % 256.
func EncodeIndex(idx int) color.RGBA {
	return color.RGBA{
		R: uint8(idx / 65536 % 256),
		G: uint8(idx / 256 % 256),
		B: uint8(idx % 256),
		A: 0xff,
	}
}

// DecodeColor inverts EncodeIndex. Pixels that are not fully opaque are
// unpainted or anti-aliased edges and decode to 0.
func DecodeColor(c color.RGBA) int {
	if c.A < 0xff {
		return 0
	}
	return (int(c.R)*65536 + int(c.G)*256 + int(c.B)) % Modulus
}

func toNRGBA(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
