package settings

var Version = "0.3"

var InputWav = ""
var OutputWav = "output.wav"

// Stream result to speaker?
var Stream = false

// Run the interactive monitor (VU meters, slot toggles) while processing
var Monitor = false

// Path to the journaled settings file. Empty means "do not persist".
var SettingsFile = "multifx-settings.bin"

// Current samplerate
var SampleRate = 48000

// Frames per processing block. Fixed for the process lifetime; the delay
// memory layout is derived from it at startup.
var BlockFrames = 32

// Treat the input as true stereo. When false the left channel is
// duplicated into the right before the chain runs.
var StereoInput = true

// Extra seconds of silence fed through the chain after the input ends,
// so delay/reverb tails are not cut off.
var TrailSeconds = 0.0

// Print extra debug info
var PrintDebug = false

// Trace the park/ack handshake to the console
var TraceParking = false
