package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/eytanadler/TOASTY/airport"
	"gonum.org/v1/gonum/mat"
)

// AirportCmd represents the airport command
var AirportCmd = &cobra.Command{
	Use:   "airport",
	Short: "Inspect an airport mask database entry",
	Long: `
Decodes the buildings/runways/taxiways/thermals mask images for an
airport at a given resolution and reports the case geometry the
optimizer would receive.

toasty airport -d ./airports -a SAN -r 1500w`,
	Run: func(cmd *cobra.Command, args []string) {
		root, _ := cmd.Flags().GetString("dir")
		name, _ := cmd.Flags().GetString("airport")
		res, _ := cmd.Flags().GetString("resolution")
		floor, _ := cmd.Flags().GetFloat64("floor")
		if len(root) == 0 || len(name) == 0 || len(res) == 0 {
			fmt.Println("error: must supply --dir, --airport, and --resolution")
			os.Exit(1)
		}
		apt, err := airport.Load(root, name, res)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		reportAirport(apt, floor)
	},
}

func init() {
	rootCmd.AddCommand(AirportCmd)
	AirportCmd.Flags().StringP("dir", "d", "", "root of the airport mask database")
	AirportCmd.Flags().StringP("airport", "a", "", "airport code (e.g. SAN)")
	AirportCmd.Flags().StringP("resolution", "R", "", "resolution folder name (e.g. 1500w)")
	AirportCmd.Flags().Float64("floor", 1e-3, "density floor for the optimizer bounds")
}

func reportAirport(apt *airport.Airport, floor float64) {
	fmt.Printf("[%d x %d]\t\t= Mesh nodes\n", apt.NumX, apt.NumY)
	fmt.Printf("%v, %v\t= X, Y limits\n", apt.XLim, apt.YLim)
	fmt.Printf("%8d\t\t= building elements\n", countNonzero(apt.Buildings))
	fmt.Printf("%8d\t\t= taxiway elements\n", countNonzero(apt.Taxiways))

	lower, upper := apt.DensityBounds(floor)
	fmt.Printf("%8d\t\t= elements pinned above the floor\n", countAbove(lower, floor))
	fmt.Printf("%8d\t\t= keep-out elements\n", countBelow(upper, 1.0))

	apps := make([]string, 0, len(apt.QElem))
	for app := range apt.QElem {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	for _, app := range apps {
		fmt.Printf("approach %s: %d heat elements, %d set-temperature nodes\n",
			app, countNonzero(apt.QElem[app]), countNonzero(apt.TSetNode[app]))
	}
}

func countNonzero(m *mat.Dense) int {
	r, c := m.Dims()
	n := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				n++
			}
		}
	}
	return n
}

func countAbove(m *mat.Dense, v float64) int {
	r, c := m.Dims()
	n := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) > v {
				n++
			}
		}
	}
	return n
}

func countBelow(m *mat.Dense, v float64) int {
	r, c := m.Dims()
	n := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) < v {
				n++
			}
		}
	}
	return n
}
