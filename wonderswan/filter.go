// refs: github.com/fogleman/nes/nes/filter.go
package wonderswan

import "math"

type Filter interface {
	Step(x float32) float32
}

// FirstOrderFilter is a one-pole IIR filter.
type FirstOrderFilter struct {
	B0    float32
	B1    float32
	A1    float32
	prevX float32
	prevY float32
}

func (f *FirstOrderFilter) Step(x float32) float32 {
	y := f.B0*x + f.B1*f.prevX - f.A1*f.prevY
	f.prevY = y
	f.prevX = x
	return y
}

func LowPassFilter(sampleRate float32, cutoffFreq float32) Filter {
	c := sampleRate / math.Pi / cutoffFreq
	a0i := 1 / (1 + c)
	return &FirstOrderFilter{
		B0: a0i,
		B1: a0i,
		A1: (1 - c) * a0i,
	}
}

func HighPassFilter(sampleRate float32, cutoffFreq float32) Filter {
	c := sampleRate / math.Pi / cutoffFreq
	a0i := 1 / (1 + c)
	return &FirstOrderFilter{
		B0: c * a0i,
		B1: -c * a0i,
		A1: (1 - c) * a0i,
	}
}

type FilterChain []Filter

func (fc FilterChain) Step(x float32) float32 {
	for i := range fc {
		x = fc[i].Step(x)
	}
	return x
}
