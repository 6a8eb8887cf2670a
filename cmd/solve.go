package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/eytanadler/TOASTY/InputParameters"
	"github.com/eytanadler/TOASTY/density"
	"github.com/eytanadler/TOASTY/fem"
	_ "github.com/eytanadler/TOASTY/utils" // optional netlib BLAS hookup
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Forward thermal solve of a YAML case file",
	Long: `
Runs the density pipeline and the finite element thermal solve for a
case file at a uniform raw density, then writes the nodal temperature
field as CSV (one row per x index).

toasty solve -f case.yaml -o temp.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		caseFile, _ := cmd.Flags().GetString("caseFile")
		outFile, _ := cmd.Flags().GetString("output")
		rawDensity, _ := cmd.Flags().GetFloat64("density")
		ksRho, _ := cmd.Flags().GetFloat64("ksRho")
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.ProfilePath(".")).Stop()
		}
		if len(caseFile) == 0 {
			fmt.Println("error: must supply a case file (-f, --caseFile) in YAML format")
			exampleFile := `
########################################
Title: "Three heat sources"
NumX: 31
NumY: 31
XLim: [0.0, 1.0]
YLim: [0.0, 1.0]
Conductivity: 1000.0
Penalty: 3.0
FilterRadius: 0.05
SetTemps:
  - {I: 10, J: 0, Value: 200.0}
  - {I: 20, J: 0, Value: 200.0}
Heats:
  - {I: 0, J: 29, Value: 2.0e+7}
  - {I: 15, J: 29, Value: 5.0e+7}
  - {I: 29, J: 29, Value: 2.0e+7}
########################################
`
			fmt.Printf("Example File:%s\n", exampleFile)
			os.Exit(1)
		}
		data, err := os.ReadFile(caseFile)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		ip := &InputParameters.CaseParameters{}
		if err = ip.Parse(data); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		ip.Print()
		if err = runSolve(ip, rawDensity, ksRho, outFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("caseFile", "f", "", "YAML case file describing the mesh, temperatures, and heats")
	SolveCmd.Flags().StringP("output", "o", "temp.csv", "CSV file for the solved temperature field")
	SolveCmd.Flags().Float64P("density", "r", 1.0, "uniform raw design density fed to the pipeline")
	SolveCmd.Flags().Float64("ksRho", 50.0, "KS aggregation parameter for the reported max temperature")
	SolveCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}

func runSolve(ip *InputParameters.CaseParameters, rawDensity, ksRho float64, outFile string) error {
	cfg, err := ip.FEMConfig()
	if err != nil {
		return err
	}
	thermal, err := fem.NewThermal(cfg)
	if err != nil {
		return err
	}
	pipe, err := ip.Pipeline(thermal.Mesh())
	if err != nil {
		return err
	}

	raw := make([]float64, thermal.Mesh().NumElements())
	for i := range raw {
		raw[i] = rawDensity
	}
	phys := pipe.Apply(raw)

	temp, err := thermal.Solve(phys)
	if err != nil {
		return err
	}

	fmt.Printf("%8d\t\t= nodes\n", thermal.Mesh().NumNodes())
	fmt.Printf("%8d\t\t= elements\n", thermal.Mesh().NumElements())
	fmt.Printf("%12.5f\t= mass\n", density.Mass(phys))
	fmt.Printf("%12.5f\t= KS max temperature (rho = %v)\n", density.KS(temp, ksRho), ksRho)

	return writeTemps(outFile, temp, ip.NumX, ip.NumY)
}

func writeTemps(fname string, temp []float64, numX, numY int) error {
	fh, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer fh.Close()
	w := csv.NewWriter(fh)
	defer w.Flush()
	row := make([]string, numY)
	for i := 0; i < numX; i++ {
		for j := 0; j < numY; j++ {
			row[j] = strconv.FormatFloat(temp[i*numY+j], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	fmt.Printf("Wrote temperature field to %s\n", fname)
	return nil
}
