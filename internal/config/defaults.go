package config

const (
	defaultStateDir     = "~/.local/share/loudlimit"
	defaultLogDir       = "~/.local/share/loudlimit/logs"
	defaultTargetLKFS   = -14.0
	defaultWorkers      = 1
	defaultStageMode    = StageModeRename
	defaultCodec        = "libmp3lame"
	defaultSampleRate   = 44100
	defaultChannels     = 2
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultHistoryLimit = 20

	minTargetLKFS = -70.0
	maxTargetLKFS = 0.0
)

// Stage modes accepted by normalize.stage_mode.
const (
	StageModeRename = "rename"
	StageModeAtomic = "atomic"
)

var defaultExtensions = []string{".mp3"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Normalize: Normalize{
			TargetLKFS: defaultTargetLKFS,
			Extensions: append([]string(nil), defaultExtensions...),
			Workers:    defaultWorkers,
			StageMode:  defaultStageMode,
		},
		Encoder: Encoder{
			Codec:      defaultCodec,
			SampleRate: defaultSampleRate,
			Channels:   defaultChannels,
		},
		History: History{
			Enabled: true,
			Limit:   defaultHistoryLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
