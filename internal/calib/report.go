package calib

import (
	"fmt"
	"io"
)

// WriteReport prints the calibration points and the calls that reproduce
// the mapping elsewhere.
func WriteReport(w io.Writer, m Mapping) error {
	_, err := fmt.Fprintf(w, `--== Calibration Data ==--
x0 %4d x1 %4d y0 %4d y1 %4d
use this mapping:
x = calib.LinearMap(p.X, %d, %d, 1, %d)
y = calib.LinearMap(p.Y, %d, %d, 1, %d)
--== Calibration Data End ==--
`,
		m.X.RawMin, m.X.RawMax, m.Y.RawMin, m.Y.RawMax,
		m.X.RawMin, m.X.RawMax, m.X.OutMax,
		m.Y.RawMin, m.Y.RawMax, m.Y.OutMax)
	return err
}
