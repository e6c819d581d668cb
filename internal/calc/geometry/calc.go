// Package geometry implements the valve and port area models: curtain,
// throat, seat-limited curtain, port-window cap and the blended effective
// area. All functions are unit-agnostic: lengths in, matching areas out.
package geometry

import (
	"math"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/calcerr"
)

// ErrInvalidGeometry marks impossible valve or port dimensions. It matches
// calcerr.ErrInvalidArgument under errors.Is.
var ErrInvalidGeometry = errors.Wrap(calcerr.ErrInvalidArgument, "invalid geometry")

// BlendMethod selects how the seat-capped curtain and the throat area are
// blended into one effective area.
type BlendMethod string

const (
	BlendSmoothMin BlendMethod = "smoothmin"
	BlendLogistic  BlendMethod = "logistic"
)

const (
	DefaultSmoothMinOrder = 6
	DefaultLogisticLD0    = 0.30
	DefaultLogisticK      = 12.0
)

// Curtain is the thin cylindrical shell swept at the seat line: pi * d * lift.
func Curtain(dValve, lift float64) (float64, error) {
	if dValve <= 0 || lift < 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "curtain needs d>0, lift>=0")
	}
	return math.Pi * dValve * lift, nil
}

// Throat is the net cross-section of the narrowest passage minus the stem.
func Throat(dThroat, dStem float64) (float64, error) {
	if dThroat <= 0 || dStem < 0 || dStem >= dThroat {
		return 0, errors.Wrap(ErrInvalidGeometry, "throat needs d_throat>0 and 0<=d_stem<d_throat")
	}
	return math.Pi * (dThroat*dThroat - dStem*dStem) / 4.0, nil
}

// LD is the lift-to-valve-diameter ratio.
func LD(lift, dValve float64) (float64, error) {
	if dValve <= 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "d_valve must be positive")
	}
	return lift / dValve, nil
}

// PortWindow approximates the port window as a rectangle with two corner
// radii knocked off: w*h - 2*(1-pi/4)*(rTop^2 + rBot^2). Used only as an
// upper-bound cap on effective area, never as a flow model by itself.
func PortWindow(width, height, rTop, rBot float64) (float64, error) {
	if width <= 0 || height <= 0 || rTop < 0 || rBot < 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "window needs w>0, h>0, radii>=0")
	}
	return width*height - 2.0*(1.0-math.Pi/4.0)*(rTop*rTop+rBot*rBot), nil
}

// SmoothMin is the power-mean approximation of min(a1, a2):
// (a1^-n + a2^-n)^(-1/n). Monotone in both arguments, bounded by the true
// minimum, n >= 1.
func SmoothMin(a1, a2 float64, n int) (float64, error) {
	if a1 <= 0 || a2 <= 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "areas must be positive")
	}
	if n < 1 {
		return 0, errors.Wrap(ErrInvalidGeometry, "smooth-min order must be >= 1")
	}
	fn := float64(n)
	return 1.0 / math.Pow(math.Pow(a1, -fn)+math.Pow(a2, -fn), 1.0/fn), nil
}

// LogisticBlend weights a1 toward a2 as L/D grows past ld0:
// w = 1/(1+exp(-k*(ld-ld0))); result = (1-w)*a1 + w*a2.
func LogisticBlend(a1, a2, ld, ld0, k float64) (float64, error) {
	if a1 <= 0 || a2 <= 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "areas must be positive")
	}
	w := 1.0 / (1.0 + math.Exp(-k*(ld-ld0)))
	return (1.0-w)*a1 + w*a2, nil
}

// SeatLimit is the lift below which the seat still controls the curtain:
// seat_width * tan(seat_angle).
func SeatLimit(seatAngleDeg, seatWidth float64) float64 {
	theta := seatAngleDeg * math.Pi / 180.0
	return seatWidth * math.Tan(math.Max(1e-6, theta))
}

// EffectiveWithSeat returns the blended effective area for one valve.
// Below the seat limit the pure curtain area applies; above it the curtain
// area frozen at the limit is blended with the throat area by the chosen
// method. The result never exceeds the throat area.
func EffectiveWithSeat(lift, dValve, dThroat, dStem, seatAngleDeg, seatWidth float64, method BlendMethod) (float64, error) {
	if dValve <= 0 || dThroat <= 0 || dStem < 0 || dStem >= dThroat || lift < 0 || seatWidth < 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "effective area needs valid valve dimensions")
	}
	aThroat, err := Throat(dThroat, dStem)
	if err != nil {
		return 0, err
	}
	limit := SeatLimit(seatAngleDeg, seatWidth)
	if lift <= limit {
		a, err := Curtain(dValve, lift)
		if err != nil {
			return 0, err
		}
		return math.Min(a, aThroat), nil
	}
	aSeat, err := Curtain(dValve, limit)
	if err != nil {
		return 0, err
	}
	if aSeat == 0 {
		// Zero seat width: no seat cap, blend the live curtain instead.
		aSeat, _ = Curtain(dValve, lift)
	}
	ld, err := LD(lift, dValve)
	if err != nil {
		return 0, err
	}
	var blended float64
	switch method {
	case BlendSmoothMin:
		blended, err = SmoothMin(aSeat, aThroat, DefaultSmoothMinOrder)
	default:
		blended, err = LogisticBlend(aSeat, aThroat, ld, DefaultLogisticLD0, DefaultLogisticK)
	}
	if err != nil {
		return 0, err
	}
	return math.Min(blended, aThroat), nil
}

// CapByWindow bounds an effective area by the port-window area.
func CapByWindow(aEff, aWindow float64) (float64, error) {
	if aEff < 0 || aWindow <= 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "window cap needs a_eff>=0, a_window>0")
	}
	return math.Min(aEff, aWindow), nil
}

// MultiValve sums per-valve effective area over n valves, capped at
// n * throat area.
func MultiValve(n int, perValve, aThroat float64) (float64, error) {
	if n < 1 || perValve < 0 || aThroat <= 0 {
		return 0, errors.Wrap(ErrInvalidGeometry, "multi-valve needs n>=1, areas valid")
	}
	return math.Min(float64(n)*perValve, float64(n)*aThroat), nil
}
