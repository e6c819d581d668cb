// Package calcerr defines the error kinds shared by all calc packages.
//
// Three kinds exist: ErrInvalidArgument for physically impossible input,
// ErrUnavailable for a missing optional input that only degrades one derived
// series, and ErrCalibrationDrift for a live constant disagreeing with its
// frozen anchor. Calibration drift is fatal and must never be absorbed.
package calcerr

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument marks geometrically or physically impossible input
	// (negative length, zero divisor, non-positive depression).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable marks a derived value that cannot be computed because an
	// optional input is missing. Series code turns this into a null entry.
	ErrUnavailable = errors.New("unavailable")

	// ErrCalibrationDrift marks a mismatch between a live calibration constant
	// and its frozen anchor value.
	ErrCalibrationDrift = errors.New("calibration drift")
)

func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

func IsCalibrationDrift(err error) bool { return errors.Is(err, ErrCalibrationDrift) }
