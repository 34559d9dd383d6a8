package types

import "time"

// OCRBackend selects how OCR tools are executed.
type OCRBackend string

const (
	// OCRLocal runs pdftoppm and tesseract from PATH.
	OCRLocal OCRBackend = "local"

	// OCRContainer runs the same tools inside a docker or podman image.
	OCRContainer OCRBackend = "container"
)

// OCRConfig holds settings for the OCR fallback engine.
type OCRConfig struct {
	// Backend selects local executables or a container runtime.
	Backend OCRBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Image is the container image providing pdftoppm and tesseract.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// DPI is the native rendering resolution (default 72).
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// Language is the tesseract language code (default "eng").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// PageTimeout bounds rendering plus recognition of one page. Zero disables.
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout" mapstructure:"page_timeout"`
}

// AttendanceConfig holds settings for attendance extraction.
type AttendanceConfig struct {
	// Keywords select which files get attendance extraction (default ["minutes"]).
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// ChairMaxLen is the sanity bound for the chair section in runes (default 500).
	ChairMaxLen int `json:"chair_max_len" yaml:"chair_max_len" mapstructure:"chair_max_len"`

	// MembersMaxLen is the sanity bound for the members section in runes (default 1000).
	MembersMaxLen int `json:"members_max_len" yaml:"members_max_len" mapstructure:"members_max_len"`

	// MayorToken is the ceremonial attendee recorded separately (default "Mayor Moran").
	MayorToken string `json:"mayor_token" yaml:"mayor_token" mapstructure:"mayor_token"`
}

// PipelineConfig groups the settings of a conversion run.
type PipelineConfig struct {
	// DownloadDir is the root of the downloaded meeting tree (YYYY/MM/meeting).
	DownloadDir string `json:"download_dir" yaml:"download_dir" mapstructure:"download_dir"`

	// OutputDir receives Markdown files and per-meeting README indexes.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// LogDir receives the per-run OCR-usage log.
	LogDir string `json:"log_dir" yaml:"log_dir" mapstructure:"log_dir"`

	// LedgerPath is the SQLite ledger file. Empty disables the ledger.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path" mapstructure:"ledger_path"`

	// RosterFile is the YAML roster. Empty disables attendance extraction.
	RosterFile string `json:"roster_file" yaml:"roster_file" mapstructure:"roster_file"`

	// Workers is the number of documents converted in parallel.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Force re-converts documents whose Markdown already exists.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`

	OCR        OCRConfig        `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Attendance AttendanceConfig `json:"attendance" yaml:"attendance" mapstructure:"attendance"`
}
