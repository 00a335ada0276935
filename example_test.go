package dirt_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/dirt"
	"github.com/hupe1980/dirt/matrix"
)

func Example() {
	m, err := matrix.FromRows(
		[]string{"G1", "G2", "G3", "G4"},
		[]string{"C1", "C2"},
		[][]float64{{10, 10}, {20, 20}, {5, 15}, {9.9, 10.1}},
	)
	if err != nil {
		log.Fatal(err)
	}

	f, err := dirt.New(m, dirt.WithTopN(2), dirt.WithControlRange("C1", "C2"), dirt.WithAllRange("C1", "C2"))
	if err != nil {
		log.Fatal(err)
	}

	cands, err := f.FindTopCandidates(context.Background(), 0)
	if err != nil {
		log.Fatal(err)
	}
	for _, c := range cands {
		fmt.Printf("%s %.3f\n", c.ID(), c.NDIV)
	}
	// Output:
	// G1/G2 0.000
	// G1/G4 0.014
}
