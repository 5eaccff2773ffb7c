package force

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Default force constants. Charge is in inverse-square units.
var (
	DefaultLinkDistance    = 120.0
	DefaultLinkStrength    = 1.0
	DefaultChargeStrength  = -30000.0
	DefaultDistanceMin     = 10.0
	DefaultCenterStrength  = 0.1
	DefaultVelocityDecay   = 0.4
	DefaultAlphaMin        = 0.001
	DefaultAlphaDecay      = 1 - math.Pow(DefaultAlphaMin, 1.0/300)
	DefaultDragAlphaTarget = 0.3
	DefaultWidth           = 1200.0
	DefaultHeight          = 600.0
)

// Config holds the tunable constants of a [Simulation].
type Config struct {
	// Link force
	LinkDistance float64 `json:"link_distance" toml:"link_distance" yaml:"link_distance" validate:"gt=0"`
	LinkStrength float64 `json:"link_strength" toml:"link_strength" yaml:"link_strength" validate:"gte=0,lte=2"`

	// Charge force. Negative strength repels.
	ChargeStrength float64 `json:"charge_strength" toml:"charge_strength" yaml:"charge_strength" validate:"lte=0"`
	DistanceMin    float64 `json:"distance_min" toml:"distance_min" yaml:"distance_min" validate:"gt=0"`
	DistanceMax    float64 `json:"distance_max" toml:"distance_max" yaml:"distance_max" validate:"gte=0"` // 0 = unbounded
	Theta          float64 `json:"theta" toml:"theta" yaml:"theta" validate:"gte=0,lte=2"`                // 0 = exact pairwise

	CenterStrength float64 `json:"center_strength" toml:"center_strength" yaml:"center_strength" validate:"gte=0,lte=1"`

	// Integration
	VelocityDecay   float64 `json:"velocity_decay" toml:"velocity_decay" yaml:"velocity_decay" validate:"gte=0,lte=1"`
	AlphaDecay      float64 `json:"alpha_decay" toml:"alpha_decay" yaml:"alpha_decay" validate:"gt=0,lt=1"`
	AlphaMin        float64 `json:"alpha_min" toml:"alpha_min" yaml:"alpha_min" validate:"gt=0,lt=1"`
	DragAlphaTarget float64 `json:"drag_alpha_target" toml:"drag_alpha_target" yaml:"drag_alpha_target" validate:"gtfield=AlphaMin,lte=1"`

	// Canvas the layout is centred in.
	Width  float64 `json:"width" toml:"width" yaml:"width" validate:"gt=0"`
	Height float64 `json:"height" toml:"height" yaml:"height" validate:"gt=0"`

	// Seed for the jiggle applied to coincident nodes.
	Seed uint64 `json:"seed" toml:"seed" yaml:"seed"`
}

// DefaultConfig returns the default constants.
func DefaultConfig() Config {
	return Config{
		LinkDistance:    DefaultLinkDistance,
		LinkStrength:    DefaultLinkStrength,
		ChargeStrength:  DefaultChargeStrength,
		DistanceMin:     DefaultDistanceMin,
		CenterStrength:  DefaultCenterStrength,
		VelocityDecay:   DefaultVelocityDecay,
		AlphaDecay:      DefaultAlphaDecay,
		AlphaMin:        DefaultAlphaMin,
		DragAlphaTarget: DefaultDragAlphaTarget,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
	}
}

// SetDefaults fills zero-valued fields whose zero value is not meaningful.
// ChargeStrength, CenterStrength, VelocityDecay, DistanceMax and Theta keep
// an explicit zero.
func (c *Config) SetDefaults() {
	if c.LinkDistance == 0 {
		c.LinkDistance = DefaultLinkDistance
	}
	if c.LinkStrength == 0 {
		c.LinkStrength = DefaultLinkStrength
	}
	if c.DistanceMin == 0 {
		c.DistanceMin = DefaultDistanceMin
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = DefaultAlphaDecay
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = DefaultAlphaMin
	}
	if c.DragAlphaTarget == 0 {
		c.DragAlphaTarget = DefaultDragAlphaTarget
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the constants against their allowed ranges.
func (c Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("invalid force config: %w", err)
	}
	return nil
}

// Center returns the canvas centre.
func (c Config) Center() (x, y float64) {
	return c.Width / 2, c.Height / 2
}
