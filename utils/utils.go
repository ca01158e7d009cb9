package utils

import (
	"fmt"
	"math"

	"github.com/fatih/color"

	"github.com/pedalworks/multifx/settings"
)

// Assert panics with a formatted message when the condition does not
// hold. Used for internal invariants only, never for input validation.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

// Debug prints a diagnostic line when -debug is enabled.
func Debug(format string, args ...interface{}) {
	if !settings.PrintDebug {
		return
	}
	color.Cyan(format, args...)
}

// TracePark prints a park/save handshake event when -traceparking is
// enabled.
func TracePark(format string, args ...interface{}) {
	if !settings.TraceParking {
		return
	}
	color.Yellow(format, args...)
}

// DBToLinear converts decibels to a linear amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDB converts a linear amplitude factor to decibels. Zero and
// negative inputs map to -inf dB's practical floor.
func LinearToDB(lin float64) float64 {
	if lin <= 0 {
		return -120.0
	}
	return 20.0 * math.Log10(lin)
}

// FormatDuration renders a sample count as "N samples (X.X ms)".
func FormatDuration(samples int, sampleRate int) string {
	ms := float64(samples) * 1000.0 / float64(sampleRate)
	return fmt.Sprintf("%d samples (%.1f ms)", samples, ms)
}
