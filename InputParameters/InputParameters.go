package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"

	"github.com/eytanadler/TOASTY/density"
	"github.com/eytanadler/TOASTY/fem"
	"github.com/eytanadler/TOASTY/mesh"
	"gonum.org/v1/gonum/mat"
)

// PointValue pins a value at one grid index: a prescribed nodal
// temperature (node indices) or an element heat rate (element indices).
type PointValue struct {
	I     int     `yaml:"I"`
	J     int     `yaml:"J"`
	Value float64 `yaml:"Value"`
}

type SmoothStepParameters struct {
	Enable bool    `yaml:"Enable"`
	Order  float64 `yaml:"Order"`
	XMin   float64 `yaml:"XMin"`
	XMax   float64 `yaml:"XMax"`
}

// Parameters obtained from the YAML case file
type CaseParameters struct {
	Title        string               `yaml:"Title"`
	NumX         int                  `yaml:"NumX"`
	NumY         int                  `yaml:"NumY"`
	XLim         [2]float64           `yaml:"XLim"`
	YLim         [2]float64           `yaml:"YLim"`
	Conductivity float64              `yaml:"Conductivity"`
	Penalty      float64              `yaml:"Penalty"`      // SIMP exponent, 0 disables penalization
	FilterRadius float64              `yaml:"FilterRadius"` // physical units, 0 disables the filter
	SmoothStep   SmoothStepParameters `yaml:"SmoothStep"`
	SetTemps     []PointValue         `yaml:"SetTemps"` // nodal Dirichlet temperatures
	Heats        []PointValue         `yaml:"Heats"`    // element heat generation rates
}

func (ip *CaseParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *CaseParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d x %d]\t\t= Mesh nodes\n", ip.NumX, ip.NumY)
	fmt.Printf("%v, %v\t= X, Y limits\n", ip.XLim, ip.YLim)
	fmt.Printf("%8.5f\t\t= Conductivity\n", ip.Conductivity)
	fmt.Printf("%8.5f\t\t= SIMP penalty\n", ip.Penalty)
	fmt.Printf("%8.5f\t\t= Filter radius\n", ip.FilterRadius)
	if ip.SmoothStep.Enable {
		fmt.Printf("[order %v on (%v, %v)]\t= SmoothStep\n", ip.SmoothStep.Order, ip.SmoothStep.XMin, ip.SmoothStep.XMax)
	}
	for _, pv := range ip.SetTemps {
		fmt.Printf("T[%d, %d] = %v\n", pv.I, pv.J, pv.Value)
	}
	for _, pv := range ip.Heats {
		fmt.Printf("q[%d, %d] = %v\n", pv.I, pv.J, pv.Value)
	}
}

// FEMConfig expands the case into the solver configuration, with every
// unpinned node marked free (+Inf).
func (ip *CaseParameters) FEMConfig() (fem.Config, error) {
	cfg := fem.Config{
		NumX:         ip.NumX,
		NumY:         ip.NumY,
		XLim:         ip.XLim,
		YLim:         ip.YLim,
		Conductivity: ip.Conductivity,
	}
	if ip.NumX < 2 || ip.NumY < 2 {
		return cfg, fmt.Errorf("case needs at least a 2x2 node mesh, got %d x %d", ip.NumX, ip.NumY)
	}
	tset := mat.NewDense(ip.NumX, ip.NumY, nil)
	for i := 0; i < ip.NumX; i++ {
		for j := 0; j < ip.NumY; j++ {
			tset.Set(i, j, math.Inf(1))
		}
	}
	for _, pv := range ip.SetTemps {
		if pv.I < 0 || pv.I >= ip.NumX || pv.J < 0 || pv.J >= ip.NumY {
			return cfg, fmt.Errorf("SetTemps index (%d, %d) outside node grid %dx%d", pv.I, pv.J, ip.NumX, ip.NumY)
		}
		tset.Set(pv.I, pv.J, pv.Value)
	}
	q := mat.NewDense(ip.NumX-1, ip.NumY-1, nil)
	for _, pv := range ip.Heats {
		if pv.I < 0 || pv.I >= ip.NumX-1 || pv.J < 0 || pv.J >= ip.NumY-1 {
			return cfg, fmt.Errorf("Heats index (%d, %d) outside element grid %dx%d", pv.I, pv.J, ip.NumX-1, ip.NumY-1)
		}
		q.Set(pv.I, pv.J, pv.Value)
	}
	cfg.TSet = tset
	cfg.Q = q
	return cfg, nil
}

// Pipeline builds the density-processing stages enabled by the case.
func (ip *CaseParameters) Pipeline(g *mesh.Grid) (*density.Pipeline, error) {
	p := &density.Pipeline{}
	var err error
	if ip.FilterRadius > 0 {
		if p.Filter, err = density.NewLinearFilter(g, ip.FilterRadius); err != nil {
			return nil, err
		}
	}
	if ip.Penalty > 0 {
		if p.Penal, err = density.NewPenalization(ip.Penalty); err != nil {
			return nil, err
		}
	}
	if ip.SmoothStep.Enable {
		if p.Step, err = density.NewSmoothStep(ip.SmoothStep.Order, ip.SmoothStep.XMin, ip.SmoothStep.XMax); err != nil {
			return nil, err
		}
	}
	return p, nil
}
