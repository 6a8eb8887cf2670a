// Package airport reads the hand-made airport mask images that define a
// taxiway redesign case: building, runway, and taxiway geometry plus one
// heat/temperature mask per approach pattern. Masks are pixel grids in
// which one pixel is one mesh element.
package airport

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Airport holds the decoded geometry for one airport at one resolution.
// All element masks have shape (NumX-1) x (NumY-1) indexed with x first
// and y increasing upward, matching the mesh ordering. TSetNode masks
// are nodal, shape NumX x NumY.
type Airport struct {
	NumX, NumY int
	XLim, YLim [2]float64

	Buildings    *mat.Dense
	Taxiways     *mat.Dense
	DensityLower *mat.Dense

	QElem    map[string]*mat.Dense
	TSetNode map[string]*mat.Dense
}

// Load reads an airport case from root/name/resolution, which must
// contain images named buildings.*, runways.*, taxiways.*, and at least
// one thermals_<approach>.*. Every mask must have identical pixel
// dimensions; a mismatch is a configuration error, never repaired.
func Load(root, name, resolution string) (*Airport, error) {
	aptDir := filepath.Join(root, name)
	if _, err := os.Stat(aptDir); err != nil {
		return nil, fmt.Errorf("%s is not an available airport under %s: %w", name, root, err)
	}
	dir := filepath.Join(aptDir, resolution)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%s is not an available resolution for %s: %w", resolution, name, err)
	}

	masks := make(map[string]*rgbMask)
	for _, base := range []string{"buildings", "runways", "taxiways"} {
		m, err := loadMask(dir, base+".*")
		if err != nil {
			return nil, err
		}
		masks[base] = m
	}
	thermalFiles, err := filepath.Glob(filepath.Join(dir, "thermals_*.*"))
	if err != nil || len(thermalFiles) == 0 {
		return nil, fmt.Errorf("no thermals_* mask found in %s", dir)
	}

	ex, ey := masks["runways"].nx, masks["runways"].ny
	for base, m := range masks {
		if m.nx != ex || m.ny != ey {
			return nil, fmt.Errorf("mask %s is %dx%d but runways is %dx%d", base, m.nx, m.ny, ex, ey)
		}
	}

	nx, ny := ex+1, ey+1
	longest := float64(max(nx, ny))
	apt := &Airport{
		NumX:     nx,
		NumY:     ny,
		XLim:     [2]float64{0, float64(nx) / longest},
		YLim:     [2]float64{0, float64(ny) / longest},
		QElem:    make(map[string]*mat.Dense),
		TSetNode: make(map[string]*mat.Dense),
	}

	// Runway darkness becomes the lower density bound: the optimizer may
	// not remove pavement the runways need.
	apt.DensityLower = mat.NewDense(ex, ey, nil)
	for i := 0; i < ex; i++ {
		for j := 0; j < ey; j++ {
			d := masks["runways"].darkness(i, j)
			if d < 0 {
				d = 0
			}
			if d > 1 {
				d = 1
			}
			apt.DensityLower.Set(i, j, d)
		}
	}
	apt.Buildings = thresholdMask(masks["buildings"])
	apt.Taxiways = thresholdMask(masks["taxiways"])
	// Mask exports sometimes leave stray red pixels in these two corner
	// elements; blank them.
	for _, m := range []*mat.Dense{apt.DensityLower, apt.Buildings, apt.Taxiways} {
		m.Set(0, ey-1, 0)
		m.Set(1, ey-1, 0)
	}

	for _, f := range thermalFiles {
		app := strings.SplitN(filepath.Base(f), "thermals_", 2)[1]
		app = strings.SplitN(app, ".", 2)[0]
		m, err := loadMask(dir, filepath.Base(f))
		if err != nil {
			return nil, err
		}
		if m.nx != ex || m.ny != ey {
			return nil, fmt.Errorf("mask thermals_%s is %dx%d but runways is %dx%d", app, m.nx, m.ny, ex, ey)
		}
		apt.QElem[app] = heatElements(m)
		apt.QElem[app].Set(0, ey-1, 0)
		apt.QElem[app].Set(1, ey-1, 0)
		apt.TSetNode[app] = setTempNodes(m, nx, ny)
	}
	return apt, nil
}

// DensityBounds returns per-element lower and upper density bounds for
// the optimizer. The lower bound is the runway-derived floor raised to
// at least floor (a zero lower bound makes the conductance matrix
// singular); buildings are keep-out, capping their elements at floor.
func (a *Airport) DensityBounds(floor float64) (lower, upper *mat.Dense) {
	ex, ey := a.NumX-1, a.NumY-1
	lower = mat.NewDense(ex, ey, nil)
	upper = mat.NewDense(ex, ey, nil)
	for i := 0; i < ex; i++ {
		for j := 0; j < ey; j++ {
			lo := a.DensityLower.At(i, j)
			if lo < floor {
				lo = floor
			}
			hi := 1.0
			if a.Buildings.At(i, j) != 0 {
				hi = floor
				lo = floor
			}
			lower.Set(i, j, lo)
			upper.Set(i, j, hi)
		}
	}
	return
}

// KeepOut returns the building mask, the region the optimizer may not
// fill with taxiway.
func (a *Airport) KeepOut() *mat.Dense {
	out := mat.NewDense(a.NumX-1, a.NumY-1, nil)
	out.Copy(a.Buildings)
	return out
}

// rgbMask is a decoded image reindexed to mesh order: entry (i, j) is
// element (i, j) with j increasing upward.
type rgbMask struct {
	nx, ny  int
	r, g, b []int
}

func (m *rgbMask) at(i, j int) (r, g, b int) {
	k := i*m.ny + j
	return m.r[k], m.g[k], m.b[k]
}

// darkness is 1 - (r+g+b)/(3*255): 0 for white, 1 for black.
func (m *rgbMask) darkness(i, j int) float64 {
	r, g, b := m.at(i, j)
	return 1 - float64(r+g+b)/(3*255)
}

func loadMask(dir, pattern string) (*rgbMask, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(files) == 0 {
		return nil, fmt.Errorf("no mask matching %s in %s", pattern, dir)
	}
	// If there are multiple extensions, just use the first one.
	fh, err := os.Open(files[0])
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", files[0], err)
	}
	bounds := img.Bounds()
	m := &rgbMask{nx: bounds.Dx(), ny: bounds.Dy()}
	m.r = make([]int, m.nx*m.ny)
	m.g = make([]int, m.nx*m.ny)
	m.b = make([]int, m.nx*m.ny)
	for i := 0; i < m.nx; i++ {
		for j := 0; j < m.ny; j++ {
			// Image rows run top to bottom; mesh j runs bottom to top.
			r, g, b, _ := img.At(bounds.Min.X+i, bounds.Min.Y+m.ny-1-j).RGBA()
			k := i*m.ny + j
			m.r[k], m.g[k], m.b[k] = int(r>>8), int(g>>8), int(b>>8)
		}
	}
	return m, nil
}

// thresholdMask marks elements darker than 10%.
func thresholdMask(m *rgbMask) *mat.Dense {
	out := mat.NewDense(m.nx, m.ny, nil)
	for i := 0; i < m.nx; i++ {
		for j := 0; j < m.ny; j++ {
			if m.darkness(i, j) > 0.1 {
				out.Set(i, j, 1)
			}
		}
	}
	return out
}

// heatElements marks elements whose red channel dominates both others by
// a factor of two.
func heatElements(m *rgbMask) *mat.Dense {
	out := mat.NewDense(m.nx, m.ny, nil)
	for i := 0; i < m.nx; i++ {
		for j := 0; j < m.ny; j++ {
			r, g, b := m.at(i, j)
			if r > 2*g && r > 2*b {
				out.Set(i, j, 1)
			}
		}
	}
	return out
}

// setTempNodes marks the four nodes around every element whose blue
// channel dominates both others by a factor of two.
func setTempNodes(m *rgbMask, nx, ny int) *mat.Dense {
	out := mat.NewDense(nx, ny, nil)
	for i := 0; i < m.nx; i++ {
		for j := 0; j < m.ny; j++ {
			r, g, b := m.at(i, j)
			if b > 2*r && b > 2*g {
				out.Set(i, j, 1)
				out.Set(i+1, j, 1)
				out.Set(i, j+1, 1)
				out.Set(i+1, j+1, 1)
			}
		}
	}
	return out
}
