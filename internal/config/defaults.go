package config

const (
	defaultConfigPath    = "~/.config/dsprep/config.toml"
	projectConfigName    = "dsprep.toml"
	defaultOutputPath    = "./data"
	defaultNaming        = NamingIndex
	defaultSeed          = 42
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultRetentionDays = 30

	// NamingIndex names output files after the record's row number.
	NamingIndex = "index"
	// NamingSource names output files after the scanner's proposed name.
	NamingSource = "source"

	envERSPath         = "DSPREP_ERS_PATH"
	envHyperKvasirPath = "DSPREP_HYPERKVASIR_PATH"
)

// Default returns a Config populated with repository defaults. Split
// fractions are left unset so ResolveSplitSizes applies its own defaults.
func Default() Config {
	return Config{
		Split: Split{
			Seed: defaultSeed,
		},
		Output: Output{
			Path:     defaultOutputPath,
			Naming:   defaultNaming,
			Manifest: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
