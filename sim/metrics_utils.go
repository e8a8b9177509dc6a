// sim/metrics_utils.go
package sim

import (
	"time"
)

// percent returns part as a percentage of whole, or 0 when whole is 0.
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * part / whole
}

// seconds renders a float seconds value as a rounded duration, e.g. "1h2m3.5s".
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(100 * time.Millisecond)
}
