package base

// Effect identifiers. The order is fixed: saved settings index pot
// tables by these values, so inserting a new effect means appending.
type EffectID int

const (
	EffectChorus EffectID = iota
	EffectCompressor
	EffectDelay
	EffectDistortion
	EffectEQ
	EffectFlanger
	EffectFuzz
	EffectOverdrive
	EffectPhaser
	EffectPreamp
	EffectReverb
	EffectCabSim
	EffectTremolo
	EffectVibrato

	NumEffects
)

// EffectNone marks an empty slot.
const EffectNone EffectID = -1

const (
	NumSlots    = 3
	NumFuncPots = 6

	// 12-bit ADC range for the function pots and expression input.
	PotMax = 4095
)

var effectNames = map[EffectID]string{
	EffectChorus:     "Chorus",
	EffectCompressor: "Compressor",
	EffectDelay:      "Delay",
	EffectDistortion: "Distortion",
	EffectEQ:         "EQ",
	EffectFlanger:    "Flanger",
	EffectFuzz:       "Fuzz",
	EffectOverdrive:  "Overdrive",
	EffectPhaser:     "Phaser",
	EffectPreamp:     "Preamp",
	EffectReverb:     "Reverb",
	EffectCabSim:     "Cab sim",
	EffectTremolo:    "Tremolo",
	EffectVibrato:    "Vibrato",
}

func (id EffectID) String() string {
	if name, ok := effectNames[id]; ok {
		return name
	}
	return "(none)"
}

// Valid reports whether id maps to an implemented effect.
func (id EffectID) Valid() bool {
	return id >= 0 && id < NumEffects
}

// Delay routing topologies.
type DelayMode int

const (
	DelayParallel DelayMode = iota
	DelayCrossed
	DelayMixed
	DelayPingPong
)

func (m DelayMode) String() string {
	switch m {
	case DelayParallel:
		return "Parallel"
	case DelayCrossed:
		return "Crossed"
	case DelayMixed:
		return "Mixed"
	case DelayPingPong:
		return "Ping-pong"
	}
	return "?"
}

// Chorus voice layouts.
type ChorusMode int

const (
	ChorusStereo3 ChorusMode = iota
	ChorusStereo2
	ChorusMono

	NumChorusModes
)

func (m ChorusMode) String() string {
	switch m {
	case ChorusStereo3:
		return "3-voice stereo"
	case ChorusStereo2:
		return "2-voice stereo"
	case ChorusMono:
		return "Mono"
	}
	return "?"
}

// FactoryPots holds the factory-default function pot values per effect,
// in ADC counts.
var FactoryPots = [NumEffects][NumFuncPots]uint16{
	EffectChorus:     {2048, 1300, 2048, 3000, 0, 0},
	EffectCompressor: {2048, 2048, 1024, 2048, 0, 0},
	EffectDelay:      {1800, 1600, 1400, 2048, 0, 0},
	EffectDistortion: {2600, 2048, 2048, 2048, 2048, 2048},
	EffectEQ:         {2048, 2048, 2048, 2048, 2048, 2048},
	EffectFlanger:    {1024, 1800, 2048, 2048, 0, 0},
	EffectFuzz:       {3000, 2048, 2048, 2048, 2048, 2048},
	EffectOverdrive:  {2200, 2048, 2048, 2048, 2048, 2048},
	EffectPhaser:     {1024, 2048, 2048, 0, 0, 0},
	EffectPreamp:     {2048, 2048, 2048, 2048, 2048, 2048},
	EffectReverb:     {2048, 1800, 2048, 0, 0, 0},
	EffectCabSim:     {2048, 2048, 0, 0, 0, 0},
	EffectTremolo:    {1600, 2048, 0, 0, 0, 0},
	EffectVibrato:    {1400, 1400, 0, 0, 0, 0},
}
