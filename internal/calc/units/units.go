// Package units holds the bijective conversions between the customary (US)
// and metric (SI) unit systems. Every pair satisfies to(from(x)) == x within
// floating tolerance. Inputs are pre-validated by callers; nothing here fails.
package units

const (
	MMPerIn    = 25.4
	CCPerIn3   = 16.387064
	MM2PerIn2  = MMPerIn * MMPerIn
	MPerFt     = 0.3048
	PaPerInH2O = 249.0889 // Pa per inch of water column at ~4 C, bench standard

	// 1 CFM in m^3/s.
	M3SPerCFM = 4.719474e-4

	LbfPerN  = 0.2248089431
	PSFPerPa = 0.0208854342 // lbf/ft^2 per Pa
)

func InToMM(v float64) float64 { return v * MMPerIn }
func MMToIn(v float64) float64 { return v / MMPerIn }

func In2ToMM2(v float64) float64 { return v * MM2PerIn2 }
func MM2ToIn2(v float64) float64 { return v / MM2PerIn2 }

func In3ToCC(v float64) float64 { return v * CCPerIn3 }
func CCToIn3(v float64) float64 { return v / CCPerIn3 }

// Litres to cubic inches (engine displacement).
func LToIn3(v float64) float64 { return v * 1000.0 / CCPerIn3 }
func In3ToL(v float64) float64 { return v * CCPerIn3 / 1000.0 }

func CFMToM3S(v float64) float64 { return v * M3SPerCFM }
func M3SToCFM(v float64) float64 { return v / M3SPerCFM }

func CFMToM3Min(v float64) float64 { return v * M3SPerCFM * 60.0 }
func M3MinToCFM(v float64) float64 { return v / (M3SPerCFM * 60.0) }

func FtSToMS(v float64) float64 { return v * MPerFt }
func MSToFtS(v float64) float64 { return v / MPerFt }

func InH2OToPa(v float64) float64 { return v * PaPerInH2O }
func PaToInH2O(v float64) float64 { return v / PaPerInH2O }

func NToLbf(v float64) float64 { return v * LbfPerN }
func LbfToN(v float64) float64 { return v / LbfPerN }

func PaToPSF(v float64) float64 { return v * PSFPerPa }
func PSFToPa(v float64) float64 { return v / PSFPerPa }

func CToK(t float64) float64 { return t + 273.15 }
func KToC(t float64) float64 { return t - 273.15 }

func FToK(t float64) float64 { return (t-32.0)*5.0/9.0 + 273.15 }
func KToF(t float64) float64 { return (t-273.15)*9.0/5.0 + 32.0 }
