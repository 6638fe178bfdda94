package pipeline

import (
	"strings"

	"tubeshift/internal/model"
	"tubeshift/internal/util/bitrate"
)

// NeedsTranscode reports whether a source with the given codecs must be
// re-encoded to play as a standard H.264/AAC MP4.
func NeedsTranscode(videoCodec, audioCodec string) bool {
	return !(strings.EqualFold(strings.TrimSpace(videoCodec), "h264") &&
		strings.EqualFold(strings.TrimSpace(audioCodec), "aac"))
}

// Decide picks how the final file is produced. A compatible source is
// renamed as-is unless a clip was cut, in which case it is remuxed so the
// index sits at the front. Incompatible sources are re-encoded at the fixed
// bitrate or one estimated from probe's size and duration.
func Decide(s model.Settings, probe model.ProbeResult, clipped bool) model.BitrateDecision {
	if !NeedsTranscode(probe.VideoCodec, probe.AudioCodec) {
		if clipped {
			return model.BitrateDecision{Mode: model.ModeRemux}
		}
		return model.BitrateDecision{Mode: model.ModePassthrough}
	}
	if s.BitrateMode == model.BitrateFixed {
		return model.BitrateDecision{Mode: model.ModeFixed, TargetMbit: max(s.FixedBitrateMbit, 1)}
	}
	return model.BitrateDecision{
		Mode:       model.ModeComputed,
		TargetMbit: bitrate.VideoMbit(probe.SizeBytes, probe.DurationSec),
	}
}

// needsDuration reports whether Decide will read probe.DurationSec.
func needsDuration(s model.Settings, probe model.ProbeResult) bool {
	return s.BitrateMode != model.BitrateFixed && NeedsTranscode(probe.VideoCodec, probe.AudioCodec)
}
