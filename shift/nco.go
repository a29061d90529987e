package shift

import (
	"math"
)

// nco is a numerically controlled oscillator. Phase is kept in [-pi, pi).
type nco struct {
	phase float64
	step  float64
}

// tune sets the phase increment for frequency f at sample rate fs.
func (o *nco) tune(f, fs float64) {
	o.step = 2 * math.Pi * f / fs
}

func (o *nco) setPhase(phase float64) {
	o.phase = wrap(phase)
}

// mix multiplies in by amplitude * exp(j*phase) and advances phase for
// every item.
func (o *nco) mix(out, in []complex64, amplitude float64) {
	for i := range in {
		sin, cos := math.Sincos(o.phase)
		out[i] = in[i] * complex(float32(amplitude*cos), float32(amplitude*sin))
		o.phase += o.step
		if o.phase >= math.Pi || o.phase < -math.Pi {
			o.phase = wrap(o.phase)
		}
	}
}

func wrap(phase float64) float64 {
	phase = math.Mod(phase+math.Pi, 2*math.Pi)
	if phase < 0 {
		phase += 2 * math.Pi
	}
	return phase - math.Pi
}
