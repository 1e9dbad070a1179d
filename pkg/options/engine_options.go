package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*EngineOptions)(nil)

// EngineOptions tunes the telemetry classification heuristics.
type EngineOptions struct {
	// MovingSpeedKmh and StoppedSpeedKmh bound the movement hysteresis band.
	MovingSpeedKmh  float64 `json:"moving-speed-kmh" mapstructure:"moving-speed-kmh"`
	StoppedSpeedKmh float64 `json:"stopped-speed-kmh" mapstructure:"stopped-speed-kmh"`

	// IgnitionOffAuthoritative makes the tracker's "engine off" signal
	// override the movement-derived ignition flag.
	IgnitionOffAuthoritative bool `json:"ignition-off-authoritative" mapstructure:"ignition-off-authoritative"`
}

// NewEngineOptions creates an EngineOptions object with default parameters.
func NewEngineOptions() *EngineOptions {
	return &EngineOptions{
		MovingSpeedKmh:  5.0,
		StoppedSpeedKmh: 2.0,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *EngineOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.StoppedSpeedKmh <= 0 {
		errors = append(errors, fmt.Errorf("stopped speed must be positive, got %v", o.StoppedSpeedKmh))
	}
	if o.MovingSpeedKmh <= o.StoppedSpeedKmh {
		errors = append(errors, fmt.Errorf(
			"moving speed (%v) must exceed stopped speed (%v)", o.MovingSpeedKmh, o.StoppedSpeedKmh))
	}

	return errors
}

// AddFlags adds flags for EngineOptions to the specified FlagSet.
func (o *EngineOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.Float64Var(&o.MovingSpeedKmh, "engine.moving-speed-kmh", o.MovingSpeedKmh,
		"Speed above which a vehicle is classified as moving.")
	fs.Float64Var(&o.StoppedSpeedKmh, "engine.stopped-speed-kmh", o.StoppedSpeedKmh,
		"Speed below which a vehicle is classified as stopped.")
	fs.BoolVar(&o.IgnitionOffAuthoritative, "engine.ignition-off-authoritative", o.IgnitionOffAuthoritative,
		"If true, an explicit engine-off signal from the tracker overrides the movement-derived ignition flag.")
}
