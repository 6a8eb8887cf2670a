package airport

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMask renders a white ex x ey image with the given pixels
// overridden, addressed in mesh element coordinates (j increasing
// upward).
func writeMask(t *testing.T, path string, ex, ey int, pixels map[[2]int]color.NRGBA) {
	img := image.NewNRGBA(image.Rect(0, 0, ex, ey))
	for x := 0; x < ex; x++ {
		for y := 0; y < ey; y++ {
			img.Set(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	for ij, c := range pixels {
		img.Set(ij[0], ey-1-ij[1], c)
	}
	fh, err := os.Create(path)
	require.NoError(t, err)
	defer fh.Close()
	require.NoError(t, png.Encode(fh, img))
}

var (
	black = color.NRGBA{0, 0, 0, 255}
	gray  = color.NRGBA{128, 128, 128, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func writeTestAirport(t *testing.T, root string) (ex, ey int) {
	ex, ey = 6, 4
	dir := filepath.Join(root, "SAN", "10w")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	writeMask(t, filepath.Join(dir, "runways.png"), ex, ey, map[[2]int]color.NRGBA{
		{2, 1}: black,
		{3, 0}: gray,
		{0, 3}: black, // stray corner pixel, must be blanked
	})
	writeMask(t, filepath.Join(dir, "buildings.png"), ex, ey, map[[2]int]color.NRGBA{
		{4, 2}: black,
	})
	writeMask(t, filepath.Join(dir, "taxiways.png"), ex, ey, map[[2]int]color.NRGBA{
		{0, 0}: black,
	})
	writeMask(t, filepath.Join(dir, "thermals_north.png"), ex, ey, map[[2]int]color.NRGBA{
		{2, 2}: red,
		{3, 1}: blue,
		{1, 3}: red, // stray corner pixel, must be blanked
	})
	return ex, ey
}

func TestLoadAirport(t *testing.T) {
	root := t.TempDir()
	ex, ey := writeTestAirport(t, root)

	apt, err := Load(root, "SAN", "10w")
	require.NoError(t, err)

	assert.Equal(t, ex+1, apt.NumX)
	assert.Equal(t, ey+1, apt.NumY)
	// The longer side is normalized to unit length.
	assert.Equal(t, [2]float64{0, 1}, apt.XLim)
	assert.InDelta(t, 5.0/7, apt.YLim[1], 1e-14)

	// Runway darkness: black pins density to 1, mid-gray to about half.
	assert.Equal(t, 1.0, apt.DensityLower.At(2, 1))
	assert.InDelta(t, 1-384.0/765, apt.DensityLower.At(3, 0), 1e-12)
	assert.Equal(t, 0.0, apt.DensityLower.At(0, 0))
	assert.Equal(t, 0.0, apt.DensityLower.At(0, ey-1), "stray corner pixel survived")

	assert.Equal(t, 1.0, apt.Buildings.At(4, 2))
	assert.Equal(t, 1.0, apt.Taxiways.At(0, 0))
	assert.Equal(t, 0.0, apt.Buildings.At(0, 0))

	require.Contains(t, apt.QElem, "north")
	q := apt.QElem["north"]
	r, c := q.Dims()
	assert.Equal(t, ex, r)
	assert.Equal(t, ey, c)
	assert.Equal(t, 1.0, q.At(2, 2))
	assert.Equal(t, 0.0, q.At(3, 1), "blue marks a temperature, not a heat")
	assert.Equal(t, 0.0, q.At(1, ey-1), "stray corner pixel survived")

	// The blue element marks its four surrounding nodes.
	ts := apt.TSetNode["north"]
	r, c = ts.Dims()
	assert.Equal(t, ex+1, r)
	assert.Equal(t, ey+1, c)
	total := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			total += ts.At(i, j)
		}
	}
	assert.Equal(t, 4.0, total)
	assert.Equal(t, 1.0, ts.At(3, 1))
	assert.Equal(t, 1.0, ts.At(4, 1))
	assert.Equal(t, 1.0, ts.At(3, 2))
	assert.Equal(t, 1.0, ts.At(4, 2))
}

func TestDensityBounds(t *testing.T) {
	root := t.TempDir()
	writeTestAirport(t, root)
	apt, err := Load(root, "SAN", "10w")
	require.NoError(t, err)

	floor := 1e-3
	lower, upper := apt.DensityBounds(floor)

	// Runway pavement cannot be removed.
	assert.Equal(t, 1.0, lower.At(2, 1))
	assert.Equal(t, 1.0, upper.At(2, 1))
	// Plain elements get the floor as the lower bound.
	assert.Equal(t, floor, lower.At(0, 1))
	assert.Equal(t, 1.0, upper.At(0, 1))
	// Buildings are keep-out: pinned at the floor from both sides.
	assert.Equal(t, floor, lower.At(4, 2))
	assert.Equal(t, floor, upper.At(4, 2))

	keep := apt.KeepOut()
	assert.Equal(t, 1.0, keep.At(4, 2))
	assert.Equal(t, 0.0, keep.At(0, 0))
}

func TestLoadErrors(t *testing.T) {
	root := t.TempDir()
	writeTestAirport(t, root)

	_, err := Load(root, "LAX", "10w")
	assert.Error(t, err)
	_, err = Load(root, "SAN", "20w")
	assert.Error(t, err)

	// A mask with mismatched dimensions is rejected, not repaired.
	dir := filepath.Join(root, "SAN", "10w")
	writeMask(t, filepath.Join(dir, "taxiways.png"), 5, 4, nil)
	_, err = Load(root, "SAN", "10w")
	assert.Error(t, err)

	// A case without any thermals mask is unusable.
	dir = filepath.Join(root, "BOS", "10w")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, base := range []string{"runways", "buildings", "taxiways"} {
		writeMask(t, filepath.Join(dir, base+".png"), 4, 4, nil)
	}
	_, err = Load(root, "BOS", "10w")
	assert.Error(t, err)
}
