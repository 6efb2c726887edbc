package a

import "math/rand"

type source interface {
	Float64() float64
}

func bad() float64 {
	if rand.Intn(2) == 0 { // want "rand.Intn uses the global source"
		return 0
	}
	return rand.Float64() // want "rand.Float64 uses the global source"
}

func good(seed int64) float64 {
	var src source = rand.New(rand.NewSource(seed))
	return src.Float64()
}
