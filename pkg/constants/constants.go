// Package constants provides shared constants for the parametrico application.
package constants

// TimestampLayout is the format used for created_at and archive dates.
const TimestampLayout = "2006-01-02T15:04:05Z07:00"

// Numeric constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// PercentageTolerance is the tolerance used when comparing percentage sets
	PercentageTolerance = 1e-6

	// CoefficientTolerance absorbs float noise when checking coefficient bounds
	CoefficientTolerance = 1e-9
)

// Project defaults
const (
	// DefaultLandCostPerM2 is the land cost applied to new projects (R$/m²)
	DefaultLandCostPerM2 = 2500.0

	// DefaultConstructionCostPerM2 is the unit cost per equivalent m² (R$/m²)
	DefaultConstructionCostPerM2 = 4500.0

	// DefaultSalePricePerM2 is the average sale price per private m² (R$/m²)
	DefaultSalePricePerM2 = 10000.0

	// DefaultConstructionMonths is the default construction duration
	DefaultConstructionMonths = 12

	// MinConstructionMonths and MaxConstructionMonths bound the duration
	MinConstructionMonths = 1
	MaxConstructionMonths = 60

	// ManualSource marks a percentage typed in by the user
	ManualSource = "Manual"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix namespaces environment overrides (PARAMETRICO_STORAGE_PROJECTS, ...)
	EnvPrefix = "PARAMETRICO"
)

// Storage defaults
const (
	DefaultProjectsFile        = "projects.json"
	DefaultStageArchiveFile    = "historico_direto.json"
	DefaultIndirectArchiveFile = "historico_indireto.json"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"
)

// DefaultMaxBodySizeBytes limits API request bodies (1 MiB)
const DefaultMaxBodySizeBytes int64 = 1 << 20
