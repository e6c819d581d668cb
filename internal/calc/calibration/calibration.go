// Package calibration is the anchored store for the empirical constants that
// pin FlowLab's outputs to the legacy application's screens. Every constant
// carries a frozen anchor value and an origin note; Verify compares live
// values against the anchors and reports drift as a fatal condition.
//
// Two profiles exist because the legacy source carries two mutually
// inconsistent revisions of the HP calibrations: "report" holds the frozen
// anchor set the reference reports were tuned against, "manual" the
// handbook-derived constants. A registry is built once, passed explicitly
// into computations, and mutated only through Override.
package calibration

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"FlowLab/internal/calc/calcerr"
)

type Profile string

const (
	ProfileReport Profile = "report"
	ProfileManual Profile = "manual"
)

// Registry key names.
const (
	KeyA0FtS   = "a0.fts"         // main-screen fixed speed of sound, ft/s
	KeyA0MS    = "a0.ms"          // main-screen fixed speed of sound, m/s
	KeyRhoSlug = "rho.std.slugft3"
	KeyRhoKgM3 = "rho.std.kgm3"

	KeyHPPerCFM  = "hp.per.cfm"   // HP = K * CFM@28
	KeyHPCSA     = "hp.csa.chain" // HP per ft^3/min (report) or per cm^2*m/s (manual)
	KeyPortDist  = "port.distribution"
	KeyShiftAlph = "shift.alpha"

	KeyKWPerCSA  = "kw.per.csa"  // kW per m^3/min through the port-area chain
	KeyKWPerFlow = "kw.per.flow" // kW per m^3/min of corrected airflow

	KeyExIntUplift = "exint.uplift"
	KeyExIntBase   = "exint.base"
	KeyExIntCR     = "exint.cr"
	KeyExIntLift   = "exint.lift"

	KeyCRFactor = "cr.factor"
	KeyCRRef    = "cr.ref"
	KeyCRSlope  = "cr.slope"
)

// Constant is one named calibration value with its frozen anchor.
type Constant struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Anchor float64 `json:"anchor"`
	Origin string  `json:"origin"`
}

// Override records one audited mutation of a constant.
type Override struct {
	Name string    `json:"name"`
	From float64   `json:"from"`
	To   float64   `json:"to"`
	Note string    `json:"note"`
	At   time.Time `json:"at"`
}

type Registry struct {
	mu        sync.RWMutex
	profile   Profile
	consts    map[string]Constant
	overrides []Override
}

func anchorTable(p Profile) []Constant {
	base := []Constant{
		{KeyA0FtS, 1125.0, 1125.0, "main screen fixed a0, US"},
		{KeyA0MS, 343.2, 343.2, "main screen fixed a0, SI (1125 ft/s)"},
		{KeyRhoSlug, 0.0023769, 0.0023769, "standard sea-level air, US energy chain"},
		{KeyRhoKgM3, 1.225, 1.225, "standard sea-level air, SI"},
		{KeyHPPerCFM, 0.411, 0.411, "HP per CFM@28, tuned to report screens"},
		{KeyHPCSA, 1.0, 1.0, "HP per ft^3/min in the port-area chain"},
		{KeyPortDist, 0.30851, 0.30851, "2.75 in^2, Mach 0.5475, N=4, VE=1, 427.7 CID -> 7037 RPM"},
		{KeyShiftAlph, 0.07, 0.07, "shift RPM = peak * (1+alpha)"},
		{KeyKWPerCSA, 6.534, 6.534, "SI main screen port-area kW anchor (~522 kW)"},
		{KeyKWPerFlow, 21.42, 21.42, "SI main screen airflow kW anchor (~528 kW)"},
		{KeyExIntUplift, 1.0143, 1.0143, "84.1/114.5 report anchor; ratio capped at 1.0 after uplift"},
		{KeyExIntBase, 0.75, 0.75, "required E/I at CR reference"},
		{KeyExIntCR, 0.01, 0.01, "required E/I slope per CR point"},
		{KeyExIntLift, -0.12, -0.12, "required E/I slope per inch of max lift"},
		{KeyCRFactor, 1.1207, 1.1207, "best-torque CR correction factor"},
		{KeyCRRef, 10.5, 10.5, "CR correction reference ratio"},
		{KeyCRSlope, 0.0, 0.0, "CR correction slope"},
	}
	if p == ProfileManual {
		for i := range base {
			switch base[i].Name {
			case KeyHPPerCFM:
				base[i].Value, base[i].Anchor = 0.43, 0.43
				base[i].Origin = "HP per CFM@28, handbook revision"
			case KeyHPCSA:
				base[i].Value, base[i].Anchor = 0.257, 0.257
				base[i].Origin = "HP per cm^2*m/s, handbook revision"
			}
		}
	}
	return base
}

// New builds a registry pinned to the anchor table of the given profile.
func New(p Profile) (*Registry, error) {
	if p != ProfileReport && p != ProfileManual {
		return nil, errors.Wrapf(calcerr.ErrInvalidArgument, "unknown calibration profile %q", p)
	}
	consts := make(map[string]Constant)
	for _, c := range anchorTable(p) {
		consts[c.Name] = c
	}
	return &Registry{profile: p, consts: consts}, nil
}

func (r *Registry) Profile() Profile {
	return r.profile
}

// Value returns the live value of a constant. Unknown names are a
// programming error and panic.
func (r *Registry) Value(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.consts[name]
	if !ok {
		panic("calibration: unknown constant " + name)
	}
	return c.Value
}

// Constants returns a snapshot of all entries.
func (r *Registry) Constants() []Constant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Constant, 0, len(r.consts))
	for _, c := range r.consts {
		out = append(out, c)
	}
	return out
}

// Override changes a live constant through the one audited path. The anchor
// is left untouched, so a subsequent Verify reports the drift.
func (r *Registry) Override(name string, value float64, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consts[name]
	if !ok {
		return errors.Wrapf(calcerr.ErrInvalidArgument, "unknown calibration constant %q", name)
	}
	r.overrides = append(r.overrides, Override{Name: name, From: c.Value, To: value, Note: note, At: time.Now()})
	c.Value = value
	r.consts[name] = c
	return nil
}

// AuditLog returns the recorded overrides in order.
func (r *Registry) AuditLog() []Override {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Override, len(r.overrides))
	copy(out, r.overrides)
	return out
}

// Verify compares every live value against its frozen anchor and returns a
// calibration-drift error on the first mismatch. Callers must treat the
// error as fatal.
func (r *Registry) Verify() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.consts {
		if c.Value != c.Anchor {
			return errors.Wrapf(calcerr.ErrCalibrationDrift,
				"%s: live %v != anchor %v (%s)", c.Name, c.Value, c.Anchor, c.Origin)
		}
	}
	return nil
}
