package parser

// FallbackName is the track name used when no track file could be found.
const FallbackName = "fallback_track.txt"

// FallbackTrack is played when the requested track file does not exist.
const FallbackTrack = "Do4-0.0-0.5-100-0 Do4-0.5-0.5-100-0 Sol4-1.0-0.5-100-0 Sol4-1.5-0.5-100-0 " +
	"La4-2.0-0.5-100-0 La4-2.5-0.5-100-0 Sol4-3.0-1.0-100-0 Fa4-4.0-0.5-100-1 " +
	"Fa4-4.5-0.5-100-1 Mi4-5.0-0.5-100-1 Mi4-5.5-0.5-100-1 Re4-6.0-0.5-100-1 " +
	"Re4-6.5-0.5-100-1 Do4-7.0-1.0-100-1"
