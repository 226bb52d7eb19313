package config

const (
	defaultDataDir                 = "~/.local/share/framesync"
	defaultCacheDir                = "~/.cache/framesync/probes"
	defaultLogDir                  = "~/.local/share/framesync/logs"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultFFprobeBinary           = "ffprobe"
	defaultProbeTimeoutSeconds     = 300
	defaultAssumedFPS              = 23.976
	defaultGapPenalty              = 0.4
	defaultOffsetTolerance         = 0.25
	defaultMinPairs                = 3
	defaultEpsilon                 = 1e-6
	defaultMaxEvents               = 3000
	defaultSmoothing               = 0.9
	defaultMergeSlopeTolerance     = 0.001
	defaultMergeInterceptTolerance = 0.05
	defaultMaxGridCells            = 25_000_000
	defaultRetentionDays           = 90
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Alignment: Alignment{
			GapPenalty:              defaultGapPenalty,
			OffsetTolerance:         defaultOffsetTolerance,
			MinPairs:                defaultMinPairs,
			Epsilon:                 defaultEpsilon,
			MaxEvents:               defaultMaxEvents,
			Smoothing:               defaultSmoothing,
			MergeSlopeTolerance:     defaultMergeSlopeTolerance,
			MergeInterceptTolerance: defaultMergeInterceptTolerance,
			MaxGridCells:            defaultMaxGridCells,
		},
		Probe: Probe{
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultProbeTimeoutSeconds,
			AssumedFPS:     defaultAssumedFPS,
			CacheEnabled:   true,
		},
		Store: Store{
			Enabled:       true,
			RetentionDays: defaultRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
