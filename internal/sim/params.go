package sim

import (
	"fmt"
	"math"
)

// Params fixes every tunable of one simulation run.
type Params struct {
	Animals int
	Foods   int

	SpeedMin      float64
	SpeedMax      float64
	SpeedAccel    float64
	RotationAccel float64
	InitialSpeed  float64

	InteractionRadius float64
	GenerationLength  int

	MutationChance float64
	MutationCoeff  float64

	EyeCells    int
	EyeFovRange float64
	EyeFovAngle float64
}

// DefaultParams reproduces the reference foraging setup: forty animals chase
// sixty foods across the unit torus for 2500 steps per generation.
func DefaultParams() Params {
	return Params{
		Animals:           40,
		Foods:             60,
		SpeedMin:          0.001,
		SpeedMax:          0.005,
		SpeedAccel:        0.2,
		RotationAccel:     math.Pi / 2,
		InitialSpeed:      0.002,
		InteractionRadius: 0.01,
		GenerationLength:  2500,
		MutationChance:    0.01,
		MutationCoeff:     0.3,
		EyeCells:          9,
		EyeFovRange:       0.25,
		EyeFovAngle:       math.Pi + math.Pi/4,
	}
}

func (p Params) Validate() error {
	if p.Animals < 1 {
		return fmt.Errorf("animal count must be > 0, got=%d", p.Animals)
	}
	if p.Foods < 1 {
		return fmt.Errorf("food count must be > 0, got=%d", p.Foods)
	}
	if p.SpeedMin < 0 {
		return fmt.Errorf("minimum speed must be >= 0, got=%v", p.SpeedMin)
	}
	if p.SpeedMax < p.SpeedMin {
		return fmt.Errorf("maximum speed %v below minimum %v", p.SpeedMax, p.SpeedMin)
	}
	if p.SpeedAccel <= 0 {
		return fmt.Errorf("speed acceleration must be > 0, got=%v", p.SpeedAccel)
	}
	if p.RotationAccel <= 0 {
		return fmt.Errorf("rotation acceleration must be > 0, got=%v", p.RotationAccel)
	}
	if p.InitialSpeed < p.SpeedMin || p.InitialSpeed > p.SpeedMax {
		return fmt.Errorf("initial speed %v outside [%v, %v]", p.InitialSpeed, p.SpeedMin, p.SpeedMax)
	}
	if p.InteractionRadius <= 0 {
		return fmt.Errorf("interaction radius must be > 0, got=%v", p.InteractionRadius)
	}
	if p.GenerationLength < 1 {
		return fmt.Errorf("generation length must be > 0, got=%d", p.GenerationLength)
	}
	if p.MutationChance < 0 || p.MutationChance > 1 {
		return fmt.Errorf("mutation chance %v outside [0,1]", p.MutationChance)
	}
	if p.MutationCoeff < 0 {
		return fmt.Errorf("mutation coefficient must be >= 0, got=%v", p.MutationCoeff)
	}
	if p.EyeCells < 1 {
		return fmt.Errorf("eye cell count must be > 0, got=%d", p.EyeCells)
	}
	if p.EyeFovRange <= 0 {
		return fmt.Errorf("eye fov range must be > 0, got=%v", p.EyeFovRange)
	}
	if p.EyeFovAngle <= 0 || p.EyeFovAngle > 2*math.Pi {
		return fmt.Errorf("eye fov angle %v outside (0, 2pi]", p.EyeFovAngle)
	}
	return nil
}
