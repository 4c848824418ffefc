package sim

import "math"

// Eye divides the field of view into angular cells and reports, per cell,
// how much food energy falls into it. Closer food contributes more. A scan
// is pure: the same world always gives the same reading, and the reading
// always has exactly cells entries.
type Eye struct {
	fovRange float64
	fovAngle float64
	cells    int
}

func NewEye(params Params) Eye {
	return Eye{
		fovRange: params.EyeFovRange,
		fovAngle: params.EyeFovAngle,
		cells:    params.EyeCells,
	}
}

func (e Eye) Cells() int {
	return e.cells
}

// ProcessVision scans foods from the given pose. Offsets are plain
// euclidean; only movement wraps around the torus. Cells run from the right
// edge of the field of view to the left.
func (e Eye) ProcessVision(position Vec2, heading float64, foods []*Food) []float64 {
	cells := make([]float64, e.cells)
	forwardX := -math.Sin(heading)
	forwardY := math.Cos(heading)

	for _, food := range foods {
		dx := food.position.X - position.X
		dy := food.position.Y - position.Y
		dist := math.Hypot(dx, dy)
		if dist >= e.fovRange {
			continue
		}

		angle := math.Atan2(forwardX*dy-forwardY*dx, forwardX*dx+forwardY*dy)
		if angle < -e.fovAngle/2 || angle > e.fovAngle/2 {
			continue
		}

		cell := int((angle + e.fovAngle/2) / e.fovAngle * float64(e.cells))
		if cell >= e.cells {
			cell = e.cells - 1
		}
		cells[cell] += (e.fovRange - dist) / e.fovRange
	}
	return cells
}
