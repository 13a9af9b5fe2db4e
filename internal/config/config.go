package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StagingDir  = "dir"
	StagingS3   = "s3"
	StagingNone = "none"
)

type SourceConfig struct {
	Path   string `yaml:"path"`
	Column string `yaml:"column"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type StagingConfig struct {
	Backend string   `yaml:"backend"` // dir | s3 | none
	Dir     string   `yaml:"dir"`
	S3      S3Config `yaml:"s3"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn"`    // file path for sqlite
}

type NormalizeConfig struct {
	OnMalformed   string `yaml:"on_malformed"` // abort | skip
	StrictNumbers bool   `yaml:"strict_numbers"`
}

// RetryConfig applies to the whole pipeline, never to a single stage.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Source    SourceConfig    `yaml:"source"`
	Staging   StagingConfig   `yaml:"staging"`
	Store     StoreConfig     `yaml:"store"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Retry     RetryConfig     `yaml:"retry"`

	Schedule struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"schedule"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console | json
	} `yaml:"logging"`

	RunLog struct {
		Dir string `yaml:"dir"`
	} `yaml:"runlog"`
}

// Default mirrors the layout of the daily DAG this job replaces.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.Source = SourceConfig{Path: "source/jobs.csv", Column: "context"}
	cfg.Staging = StagingConfig{Backend: StagingDir, Dir: "staging/transformed"}
	cfg.Store = StoreConfig{Driver: DriverSQLite, DSN: "jobs.db"}
	cfg.Normalize = NormalizeConfig{OnMalformed: PolicyAbort}
	cfg.Retry = RetryConfig{Attempts: 3, Delay: 15 * time.Minute}
	cfg.Schedule.Interval = 24 * time.Hour
	cfg.Metrics.Addr = "127.0.0.1:9464"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.RunLog.Dir = "runs"
	return cfg
}

// Load reads path over Default, so a partial file only overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Path resolves p against app.data_dir unless it is already absolute.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}

// StoreDSN returns the DSN with sqlite file paths resolved against the data dir.
func (c Config) StoreDSN() string {
	if c.Store.Driver == DriverSQLite {
		return c.Path(c.Store.DSN)
	}
	return c.Store.DSN
}

// LockPath is the file guarding the store against concurrent runs.
func (c Config) LockPath() string {
	return c.Path("jobetl.lock")
}
