package config

import "github.com/marmos91/extentvol/internal/bytesize"

// DefaultConfig returns a Config populated entirely with defaults, used when
// no configuration file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields of cfg with defaults. It is
// applied after unmarshalling a partial config file so that unset sections
// still end up valid.
func ApplyDefaults(cfg *Config) {
	applyVolumeDefaults(&cfg.Volume)
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyVolumeDefaults(v *VolumeConfig) {
	if v.BlockSize == 0 {
		v.BlockSize = 4 * bytesize.KiB
	}
	if v.SliceSize == 0 {
		v.SliceSize = 1 * bytesize.MiB
	}
	if v.PreallocSize == 0 {
		v.PreallocSize = 64 * bytesize.KiB
	}
	if v.VolumeCapacity == 0 {
		v.VolumeCapacity = 1 * bytesize.GiB
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "INFO"
	}
	if l.Format == "" {
		l.Format = "text"
	}
	if l.Output == "" {
		l.Output = "stdout"
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.ListenAddr == "" {
		m.ListenAddr = ":9090"
	}
}
