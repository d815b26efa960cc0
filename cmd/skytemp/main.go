// Command skytemp is a diagnostic harness for the sky temperature
// correction model. Given a raw infrared sky temperature and an ambient
// temperature, it prints the corrected sky temperature and the cloud
// state using the default coefficients and boundaries.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/skysentry/skysentry/pkg/skytemp"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <sky-temp-c> <ambient-temp-c>\n", os.Args[0])
		os.Exit(1)
	}

	ts, err := strconv.ParseFloat(os.Args[1], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid sky temperature %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	ta, err := strconv.ParseFloat(os.Args[2], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid ambient temperature %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}

	corrected := skytemp.Correct(ts, ta, skytemp.DefaultCoefficients())
	state := skytemp.ClassifyDefault(corrected)

	fmt.Printf("%.2f\n%s\n", corrected, state)
}
