package sensor

// Fake is a test double with directly settable calibrated readings.
type Fake struct {
	TemperatureC float32
	LightPct     float32
	PressurePct  float32

	// Err, if set, is returned by every read.
	Err error
	// LightErr, if set, is returned by Light only.
	LightErr error

	// LightReads counts calls to Light.
	LightReads int
}

// Temperature returns the scripted temperature.
func (f *Fake) Temperature() (float32, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.TemperatureC, nil
}

// Light returns the scripted light level.
func (f *Fake) Light() (float32, error) {
	f.LightReads++
	if f.Err != nil {
		return 0, f.Err
	}
	if f.LightErr != nil {
		return 0, f.LightErr
	}
	return f.LightPct, nil
}

// Pressure returns the scripted pressure.
func (f *Fake) Pressure() (float32, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.PressurePct, nil
}

// FakeSource is a RawSource returning a fixed sample.
type FakeSource struct {
	Sample Raw
	Err    error
}

// Raw returns the configured sample or error.
func (f *FakeSource) Raw() (Raw, error) {
	if f.Err != nil {
		return Raw{}, f.Err
	}
	return f.Sample, nil
}
