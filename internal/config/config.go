// Package config resolves settings from flags, environment, .env and the
// config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tubeshift/internal/dirs"
	"tubeshift/internal/model"
)

// EnvPrefix prefixes every environment variable, e.g. TUBESHIFT_OUT_DIR.
const EnvPrefix = "TUBESHIFT"

// Config keys.
const (
	KeyOutDir        = "out_dir"
	KeyBitrateMode   = "bitrate_mode"
	KeyFixedBitrate  = "fixed_bitrate_mbit"
	KeyAudioBitrate  = "audio_bitrate_kbps"
	KeyPreset        = "preset"
	KeyFolderMode    = "folder_mode"
	KeyKeepTemp      = "keep_temp"
	KeyKeepFailed    = "keep_failed"
	KeyJobs          = "jobs"
	KeyFragments     = "fragments"
	KeyDLBinary      = "dl_binary"
	KeyFFmpegBinary  = "ffmpeg_binary"
	KeyFFprobeBinary = "ffprobe_binary"
	KeyVerbose       = "verbose"
	KeyLogLevel      = "log_level"
	KeyMetricsAddr   = "metrics_addr"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"out-dir":        KeyOutDir,
	"bitrate-mode":   KeyBitrateMode,
	"fixed-bitrate":  KeyFixedBitrate,
	"audio-bitrate":  KeyAudioBitrate,
	"preset":         KeyPreset,
	"folder-mode":    KeyFolderMode,
	"keep-temp":      KeyKeepTemp,
	"keep-failed":    KeyKeepFailed,
	"jobs":           KeyJobs,
	"fragments":      KeyFragments,
	"dl-binary":      KeyDLBinary,
	"ffmpeg-binary":  KeyFFmpegBinary,
	"ffprobe-binary": KeyFFprobeBinary,
	"verbose":        KeyVerbose,
	"log-level":      KeyLogLevel,
	"metrics-addr":   KeyMetricsAddr,
}

var x264Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow", "placebo",
}

// Tools are the external binaries the user pinned, empty meaning PATH lookup.
type Tools struct {
	Downloader string
	FFmpeg     string
	FFprobe    string
}

// Runtime holds process-level options that are not part of job settings.
type Runtime struct {
	Tools       Tools
	LogLevel    string
	MetricsAddr string
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	d := model.DefaultSettings()
	v.SetDefault(KeyOutDir, dirs.DefaultOutputDir())
	v.SetDefault(KeyBitrateMode, string(d.BitrateMode))
	v.SetDefault(KeyFixedBitrate, d.FixedBitrateMbit)
	v.SetDefault(KeyAudioBitrate, d.AudioBitrateKbps)
	v.SetDefault(KeyPreset, d.Preset)
	v.SetDefault(KeyFolderMode, string(d.FolderMode))
	v.SetDefault(KeyKeepTemp, d.KeepTemp)
	v.SetDefault(KeyKeepFailed, d.KeepFailed)
	v.SetDefault(KeyJobs, d.Jobs)
	v.SetDefault(KeyFragments, d.ConcurrentFragments)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMetricsAddr, "")
}

// Init wires v with defaults, .env, environment variables, flag bindings
// and the config file. configFile overrides the search path when set.
// A missing config file is not an error.
func Init(v *viper.Viper, flags *pflag.FlagSet, configFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("bind --%s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if cfgDir, err := dirs.ConfigDir(); err == nil {
			v.AddConfigPath(cfgDir)
		}
		v.SetConfigName("config") // config.{yaml|yml|json|toml}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (configFile == "" && errors.Is(err, fs.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load validates the resolved values and returns the job settings.
func Load(v *viper.Viper) (model.Settings, error) {
	s := model.Settings{
		OutDir:              strings.TrimSpace(v.GetString(KeyOutDir)),
		BitrateMode:         model.BitrateMode(strings.ToLower(strings.TrimSpace(v.GetString(KeyBitrateMode)))),
		FixedBitrateMbit:    v.GetInt(KeyFixedBitrate),
		AudioBitrateKbps:    v.GetInt(KeyAudioBitrate),
		Preset:              strings.ToLower(strings.TrimSpace(v.GetString(KeyPreset))),
		FolderMode:          model.FolderMode(strings.ToLower(strings.TrimSpace(v.GetString(KeyFolderMode)))),
		KeepTemp:            v.GetBool(KeyKeepTemp),
		KeepFailed:          v.GetBool(KeyKeepFailed),
		Jobs:                v.GetInt(KeyJobs),
		ConcurrentFragments: v.GetInt(KeyFragments),
		Verbose:             v.GetBool(KeyVerbose),
	}

	var errs []error
	if s.OutDir == "" {
		errs = append(errs, errors.New("out_dir must not be empty"))
	} else {
		s.OutDir = expandHome(s.OutDir)
	}
	switch s.BitrateMode {
	case model.BitrateDynamic, model.BitrateFixed:
	default:
		errs = append(errs, fmt.Errorf("bitrate_mode %q: want dynamic or fixed", s.BitrateMode))
	}
	if s.FixedBitrateMbit < 1 {
		errs = append(errs, fmt.Errorf("fixed_bitrate_mbit %d: must be at least 1", s.FixedBitrateMbit))
	}
	if s.AudioBitrateKbps < 1 {
		errs = append(errs, fmt.Errorf("audio_bitrate_kbps %d: must be positive", s.AudioBitrateKbps))
	}
	if !slices.Contains(x264Presets, s.Preset) {
		errs = append(errs, fmt.Errorf("preset %q: want one of %s", s.Preset, strings.Join(x264Presets, ", ")))
	}
	switch s.FolderMode {
	case model.FolderPerJob, model.FolderShared:
	default:
		errs = append(errs, fmt.Errorf("folder_mode %q: want per-job or shared", s.FolderMode))
	}
	if s.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs %d: must be at least 1", s.Jobs))
	}
	if s.ConcurrentFragments < 1 {
		errs = append(errs, fmt.Errorf("fragments %d: must be at least 1", s.ConcurrentFragments))
	}
	if err := errors.Join(errs...); err != nil {
		return model.Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// LoadRuntime returns the non-job options.
func LoadRuntime(v *viper.Viper) Runtime {
	return Runtime{
		Tools: Tools{
			Downloader: v.GetString(KeyDLBinary),
			FFmpeg:     v.GetString(KeyFFmpegBinary),
			FFprobe:    v.GetString(KeyFFprobeBinary),
		},
		LogLevel:    v.GetString(KeyLogLevel),
		MetricsAddr: v.GetString(KeyMetricsAddr),
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return filepath.Clean(p)
}
