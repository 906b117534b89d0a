package types

// RunSelection chooses which classification run directory to load when a
// year has more than one.
type RunSelection string

const (
	// SelectByTimestamp picks the run with the largest numeric suffix in
	// its directory name (the pipeline names runs "<keyword>_<unix-ts>").
	SelectByTimestamp RunSelection = "timestamp"

	// SelectByModTime picks the run directory with the most recent
	// modification time.
	SelectByModTime RunSelection = "mtime"
)

// CatalogConfig holds settings for the on-disk catalog.
type CatalogConfig struct {
	// DataDir is the root directory containing <year>/<run-id>/ output
	// written by the classification pipeline.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// RunSelection picks the run when a year has several (default timestamp).
	RunSelection RunSelection `json:"run_selection" yaml:"run_selection"`
}

// QueryConfig holds settings for the query service.
type QueryConfig struct {
	// DefaultPageSize is used when a request omits page_size (default 20).
	DefaultPageSize int `json:"default_page_size" yaml:"default_page_size"`

	// MaxPageSize caps requested page sizes (default 100).
	MaxPageSize int `json:"max_page_size" yaml:"max_page_size"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// ListenAddr is the address the API listens on (default ":8080").
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// AppConfig groups all configuration for paper-atlas.
type AppConfig struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Query   QueryConfig   `json:"query" yaml:"query"`
	Server  ServerConfig  `json:"server" yaml:"server"`
}

// Defaults fills zero-valued fields with their documented defaults.
func (c *AppConfig) Defaults() {
	if c.Catalog.DataDir == "" {
		c.Catalog.DataDir = "output"
	}
	if c.Catalog.RunSelection == "" {
		c.Catalog.RunSelection = SelectByTimestamp
	}
	if c.Query.DefaultPageSize <= 0 {
		c.Query.DefaultPageSize = 20
	}
	if c.Query.MaxPageSize <= 0 {
		c.Query.MaxPageSize = 100
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
}
