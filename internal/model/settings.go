package model

// BitrateMode selects how the re-encode bitrate is chosen.
type BitrateMode string

const (
	BitrateDynamic BitrateMode = "dynamic" // estimated from size and duration
	BitrateFixed   BitrateMode = "fixed"   // Settings.FixedBitrateMbit
)

// FolderMode controls where final files end up.
type FolderMode string

const (
	FolderPerJob FolderMode = "per-job" // final file stays in the job directory
	FolderShared FolderMode = "shared"  // final file moves into one shared folder
)

// SharedFolderName is the directory under OutDir used in shared folder mode.
const SharedFolderName = "TUBESHIFT_FILES"

// Settings is the resolved, immutable configuration handed to every job.
type Settings struct {
	OutDir              string
	BitrateMode         BitrateMode
	FixedBitrateMbit    int
	AudioBitrateKbps    int
	Preset              string // x264 preset, e.g. "slow"
	FolderMode          FolderMode
	KeepTemp            bool // keep the downloader's temp subdirectory
	KeepFailed          bool // keep the job directory of failed jobs
	Jobs                int  // worker pool size
	ConcurrentFragments int  // downloader -N value
	Verbose             bool
}

// DefaultSettings mirrors the built-in configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		OutDir:              ".",
		BitrateMode:         BitrateDynamic,
		FixedBitrateMbit:    8,
		AudioBitrateKbps:    320,
		Preset:              "slow",
		FolderMode:          FolderPerJob,
		KeepFailed:          true,
		Jobs:                2,
		ConcurrentFragments: 8,
	}
}
