package encoder

import (
	"strconv"

	"tubeshift/internal/util/bitrate"
)

// DefaultPreset is the x264 preset used when Params.Preset is empty.
const DefaultPreset = "slow"

// Params are the knobs of a re-encode.
type Params struct {
	Mbit      int    // target video bitrate, applied as constant bitrate
	Preset    string // x264 preset
	AudioKbps int
}

// BuildTranscodeArgs constructs ffmpeg arguments that re-encode src to an
// H.264/AAC MP4 at a constant p.Mbit video bitrate.
func BuildTranscodeArgs(src, dst string, p Params, includeProgress bool) []string {
	rate := bitrate.Flag(max(p.Mbit, 1))
	preset := p.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	args := []string{
		"-hide_banner", "-y",
		"-i", src,
		"-c:v", "libx264",
		"-preset", preset,
		"-pix_fmt", "yuv420p",
		"-b:v", rate,
		"-minrate", rate,
		"-maxrate", rate,
		"-bufsize", "100M",
		"-profile:v", "high",
		"-c:a", "aac",
		"-b:a", strconv.Itoa(bitrate.SafeAudioKbps(p.AudioKbps)) + "k",
		"-movflags", "+faststart",
	}
	return finish(args, dst, includeProgress)
}

// BuildRemuxArgs constructs ffmpeg arguments that copy both streams of src
// into an MP4 with the index moved to the front.
func BuildRemuxArgs(src, dst string, includeProgress bool) []string {
	args := []string{
		"-hide_banner", "-y",
		"-i", src,
		"-c:v", "copy",
		"-c:a", "copy",
		"-movflags", "+faststart",
	}
	return finish(args, dst, includeProgress)
}

func finish(args []string, dst string, includeProgress bool) []string {
	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	return append(args, dst)
}
