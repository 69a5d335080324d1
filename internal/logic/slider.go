package logic

// SliderMax is the top of the slider domain written by the companion app.
const SliderMax = 100

// SliderDuty rescales a slider intensity (0-100) to an 8-bit PWM duty,
// rounding half up: 50 maps to 128. Intensities above 100 are clamped.
func SliderDuty(intensity uint8) (duty uint8, clamped bool) {
	v := int(intensity)
	if v > SliderMax {
		v = SliderMax
		clamped = true
	}
	return uint8((v*255 + SliderMax/2) / SliderMax), clamped
}
