package fixed

import "math"

// Pot mappings take a raw ADC count in [0, potMax] and produce an
// engine unit. All of these run on parameter reload only.

// MapPotQ16 maps a pot linearly onto a Q16.16 range.
func MapPotQ16(pot int, potMax int, min, max Q16) Q16 {
	return min + Q16(uint64(clampPot(pot, potMax))*uint64(max-min)/uint64(potMax))
}

// MapPotQ24 maps a pot linearly onto a Q8.24 range.
func MapPotQ24(pot int, potMax int, min, max Q24) Q24 {
	return min + Q24(int64(clampPot(pot, potMax))*int64(max-min)/int64(potMax))
}

// MapPotInt maps a pot linearly onto an integer range.
func MapPotInt(pot int, potMax int, min, max int) int {
	return min + int(int64(clampPot(pot, potMax))*int64(max-min)/int64(potMax))
}

// MapPotEven maps a pot onto even integers in [min, max]. Used for
// parameters that must land on whole stereo pairs.
func MapPotEven(pot int, potMax int, min, max int) int {
	steps := (max - min) / 2
	return min + 2*MapPotInt(pot, potMax, 0, steps)
}

// MapPotRange maps a pot linearly onto a float range (frequencies,
// decibels, milliseconds).
func MapPotRange(pot int, potMax int, min, max float64) float64 {
	return min + float64(clampPot(pot, potMax))/float64(potMax)*(max-min)
}

// MapPotLog maps a pot onto a float range with a logarithmic taper,
// which is what a filter-cutoff control should feel like.
func MapPotLog(pot int, potMax int, min, max float64) float64 {
	norm := float64(clampPot(pot, potMax)) / float64(potMax)
	return min * math.Pow(max/min, norm)
}

func clampPot(pot, potMax int) int {
	if pot < 0 {
		return 0
	}
	if pot > potMax {
		return potMax
	}
	return pot
}
