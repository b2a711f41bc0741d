package forecast_test

import (
	"fmt"

	"github.com/cwbudde/algo-cosmo/measure/forecast"
)

func ExampleForecast_SNRatio() {
	flat := func(value float64) (ells, cls []float64) {
		for ell := 2; ell <= 2000; ell++ {
			ells = append(ells, float64(ell))
			cls = append(cls, value)
		}
		return ells, cls
	}

	f := forecast.New(nil)
	ells, clkk := flat(1e-8)
	_, nlkk := flat(2e-8)
	_, clgg := flat(1e-6)
	_, clss := flat(4e-9)
	_, clkg := flat(5e-8)
	_, clks := flat(2e-9)
	_, clsg := flat(2.5e-8)

	for _, err := range []error{
		f.LoadKK(ells, clkk, ells, nlkk),
		f.LoadGG(ells, clgg, 1),
		f.LoadSS(ells, clss, 10, 0.3),
		f.LoadKG(ells, clkg),
		f.LoadKS(ells, clks),
		f.LoadSG(ells, clsg),
	} {
		if err != nil {
			fmt.Println(err)
			return
		}
	}

	edges := []float64{100, 200, 400, 800}
	percentR, snR, maxlike, err := f.SNRatio(edges, 0.4)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("amplitude %.1f\n", maxlike)
	fmt.Printf("percent x S/N %.0f\n", percentR*snR)
	// Output:
	// amplitude 2.0
	// percent x S/N 100
}
