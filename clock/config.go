package clock

import (
	"fmt"
	"math"

	"github.com/sarchlab/vtester/timing"
)

// Config is the configured rate of a clock. Exactly one of Period and
// Frequency is set; the one that is set is authoritative.
type Config struct {
	Period    timing.VTimeInNs
	Frequency timing.Freq
}

// PeriodConfig creates a period-tagged config.
func PeriodConfig(period timing.VTimeInNs) Config {
	return Config{Period: period}
}

// FrequencyConfig creates a frequency-tagged config.
func FrequencyConfig(freq timing.Freq) Config {
	return Config{Frequency: freq}
}

// IsPeriod tells if the config is period-tagged.
func (c Config) IsPeriod() bool {
	return c.Period != 0 && c.Frequency == 0
}

// IsFrequency tells if the config is frequency-tagged.
func (c Config) IsFrequency() bool {
	return c.Frequency != 0 && c.Period == 0
}

// Validate checks that exactly one positive, finite value is set.
func (c Config) Validate() error {
	switch {
	case c.Period != 0 && c.Frequency != 0:
		return fmt.Errorf("%w: both period and frequency are set",
			ErrMalformedConfig)
	case c.Period == 0 && c.Frequency == 0:
		return fmt.Errorf("%w: neither period nor frequency is set",
			ErrMalformedConfig)
	case c.Period != 0:
		if !positiveFinite(float64(c.Period)) {
			return fmt.Errorf("%w: period %g ns is not positive",
				ErrMalformedConfig, float64(c.Period))
		}
	default:
		if !positiveFinite(float64(c.Frequency)) {
			return fmt.Errorf("%w: frequency %g kHz is not positive",
				ErrMalformedConfig, c.Frequency.InKHz())
		}
	}

	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// EffectivePeriod returns the clock period. A frequency-tagged config is
// converted without intermediate rounding.
func (c Config) EffectivePeriod() timing.VTimeInNs {
	if c.Period != 0 {
		return c.Period
	}

	return c.Frequency.Period()
}

func (c Config) String() string {
	switch {
	case c.IsPeriod():
		return fmt.Sprintf("period=%gns", float64(c.Period))
	case c.IsFrequency():
		return fmt.Sprintf("frequency=%gkHz", c.Frequency.InKHz())
	default:
		return "invalid"
	}
}
