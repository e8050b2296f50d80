package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bolx/internal/extractor"
	"bolx/internal/grid"
	"bolx/internal/layout"
	"bolx/internal/matcher"
	"bolx/internal/textproc"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	Auth       AuthConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Queue      QueueConfig
	Email      EmailConfig
	Templates  TemplatesConfig
	Output     OutputConfig
	Extraction ExtractionConfig
}

// EmailConfig holds batch notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	NotifyTo    string `mapstructure:"notify_to"`
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	PollIntervalSecs int  `mapstructure:"poll_interval_secs"`
	MaxRetries       int  `mapstructure:"max_retries"`
	Concurrency      int  `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	Environment   string        `mapstructure:"environment"`
	MaxBodyMB     int64         `mapstructure:"max_body_mb"`
	MaxBatchItems int           `mapstructure:"max_batch_items"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds service token signing settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// AuthConfig holds API key settings. APIKeyHashes are bcrypt hashes; a
// matching key authenticates as a service caller.
type AuthConfig struct {
	APIKeyHashes []string `mapstructure:"api_key_hashes"`
	Disabled     bool     `mapstructure:"disabled"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	PresignExpiry  int64  `mapstructure:"presign_expiry"`
	TemplatePrefix string `mapstructure:"template_prefix"`
	OutputPrefix   string `mapstructure:"output_prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TemplatesConfig selects where templates are loaded from.
type TemplatesConfig struct {
	// Source is one of "dir", "s3" or "db".
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"`
}

// OutputConfig holds defaults for batch output files.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	CSVPath  string `mapstructure:"csv_path"`
	XLSXPath string `mapstructure:"xlsx_path"`
}

// ExtractionConfig holds the tunables of the extraction pipeline.
type ExtractionConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	DocumentTimeout time.Duration `mapstructure:"document_timeout"`

	ReadingBand        float64 `mapstructure:"reading_band"`
	LineMergeTolerance float64 `mapstructure:"line_merge_tolerance"`

	MatchThreshold         float64 `mapstructure:"match_threshold"`
	WeightCoverage         float64 `mapstructure:"weight_coverage"`
	WeightDensity          float64 `mapstructure:"weight_density"`
	WeightGeometry         float64 `mapstructure:"weight_geometry"`
	WeightFingerprint      float64 `mapstructure:"weight_fingerprint"`
	MaxShift               float64 `mapstructure:"max_shift"`
	MaxScale               float64 `mapstructure:"max_scale"`
	RegionMargin           float64 `mapstructure:"region_margin"`
	RegionOverlapTolerance float64 `mapstructure:"region_overlap_tolerance"`

	IndentTolerance    float64 `mapstructure:"indent_tolerance"`
	ParagraphGapFactor float64 `mapstructure:"paragraph_gap_factor"`
	UnboxedGap         float64 `mapstructure:"unboxed_gap"`

	GridSensitivity     float64 `mapstructure:"grid_sensitivity"`
	MinGridLines        int     `mapstructure:"min_grid_lines"`
	RowClusterFactor    float64 `mapstructure:"row_cluster_factor"`
	ColumnClusterFactor float64 `mapstructure:"column_cluster_factor"`

	LowConfidence         float64           `mapstructure:"low_confidence"`
	CollapseSpacedLetters bool              `mapstructure:"collapse_spaced_letters"`
	OCRConfusions         map[string]string `mapstructure:"ocr_confusions"`
}

// Validate checks value ranges.
func (e *ExtractionConfig) Validate() error {
	var problems []string
	if e.MatchThreshold < 0 || e.MatchThreshold > 1 {
		problems = append(problems, "match_threshold must be within [0,1]")
	}
	for name, v := range map[string]float64{
		"line_merge_tolerance":     e.LineMergeTolerance,
		"max_shift":                e.MaxShift,
		"max_scale":                e.MaxScale,
		"region_margin":            e.RegionMargin,
		"region_overlap_tolerance": e.RegionOverlapTolerance,
		"indent_tolerance":         e.IndentTolerance,
		"unboxed_gap":              e.UnboxedGap,
		"weight_coverage":          e.WeightCoverage,
		"weight_density":           e.WeightDensity,
		"weight_geometry":          e.WeightGeometry,
		"weight_fingerprint":       e.WeightFingerprint,
	} {
		if v < 0 {
			problems = append(problems, name+" must not be negative")
		}
	}
	if e.WeightCoverage+e.WeightDensity+e.WeightGeometry+e.WeightFingerprint <= 0 {
		problems = append(problems, "at least one matcher weight must be positive")
	}
	if e.GridSensitivity < 0 || e.GridSensitivity > 1 {
		problems = append(problems, "grid_sensitivity must be within [0,1]")
	}
	if len(problems) > 0 {
		return errors.New("invalid extraction config: " + strings.Join(problems, "; "))
	}
	return nil
}

// LayoutOptions maps the config onto the layout normalizer.
func (e *ExtractionConfig) LayoutOptions() layout.Options {
	return layout.Options{
		ReadingBand:        e.ReadingBand,
		LineMergeTolerance: e.LineMergeTolerance,
	}
}

// MatcherOptions maps the config onto the template matcher.
func (e *ExtractionConfig) MatcherOptions() matcher.Options {
	return matcher.Options{
		WeightCoverage:    e.WeightCoverage,
		WeightDensity:     e.WeightDensity,
		WeightGeometry:    e.WeightGeometry,
		WeightFingerprint: e.WeightFingerprint,
		RegionMargin:      e.RegionMargin,
		MaxShift:          e.MaxShift,
		MaxScale:          e.MaxScale,
		MatchThreshold:    e.MatchThreshold,
	}
}

// ExtractorOptions maps the config onto the region extractor.
func (e *ExtractionConfig) ExtractorOptions() extractor.Options {
	return extractor.Options{
		RegionMargin:       e.RegionMargin,
		LineBand:           e.ReadingBand,
		IndentTolerance:    e.IndentTolerance,
		ParagraphGapFactor: e.ParagraphGapFactor,
		UnboxedGap:         e.UnboxedGap,
		Concurrency:        e.Concurrency,
	}
}

// GridOptions maps the config onto the table grid resolver.
func (e *ExtractionConfig) GridOptions() grid.Options {
	opts := grid.DefaultOptions()
	opts.Sensitivity = e.GridSensitivity
	opts.LineMergeTolerance = e.LineMergeTolerance
	opts.MinGridLines = e.MinGridLines
	opts.RowClusterFactor = e.RowClusterFactor
	opts.ColumnClusterFactor = e.ColumnClusterFactor
	opts.ReadingBand = e.ReadingBand
	return opts
}

// TextOptions maps the config onto the text post-processor. Configured
// confusions extend the built-in table.
func (e *ExtractionConfig) TextOptions() textproc.Options {
	replacements := textproc.DefaultTokenReplacements()
	for from, to := range e.OCRConfusions {
		replacements[from] = to
	}
	return textproc.Options{
		LowConfidence:         e.LowConfidence,
		CollapseSpacedLetters: e.CollapseSpacedLetters,
		TokenReplacements:     replacements,
	}
}

// Load reads configuration from environment variables with the BOLX_ prefix
// and, when BOLX_CONFIG_FILE names one, from a YAML or JSON file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOLX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_mb", 20)
	v.SetDefault("server.max_batch_items", 50)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "bolx")
	v.SetDefault("db.password", "bolx_secret")
	v.SetDefault("db.name", "bolx_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "1h")
	v.SetDefault("jwt.issuer", "bolx")

	// Auth defaults
	v.SetDefault("auth.api_key_hashes", "")
	v.SetDefault("auth.disabled", false)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "bolx-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)
	v.SetDefault("s3.template_prefix", "templates/")
	v.SetDefault("s3.output_prefix", "results/")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@bolx.local")
	v.SetDefault("email.from_name", "bolx")
	v.SetDefault("email.notify_to", "")

	// Templates and output defaults
	v.SetDefault("templates.source", "dir")
	v.SetDefault("templates.dir", "templates")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.csv_path", "")
	v.SetDefault("output.xlsx_path", "")

	// Extraction defaults
	v.SetDefault("extraction.concurrency", 0)
	v.SetDefault("extraction.document_timeout", "60s")
	v.SetDefault("extraction.reading_band", 0.5)
	v.SetDefault("extraction.line_merge_tolerance", 3.0)
	v.SetDefault("extraction.match_threshold", 0.6)
	v.SetDefault("extraction.weight_coverage", 0.4)
	v.SetDefault("extraction.weight_density", 0.3)
	v.SetDefault("extraction.weight_geometry", 0.3)
	v.SetDefault("extraction.weight_fingerprint", 0.0)
	v.SetDefault("extraction.max_shift", 50.0)
	v.SetDefault("extraction.max_scale", 0.05)
	v.SetDefault("extraction.region_margin", 2.0)
	v.SetDefault("extraction.region_overlap_tolerance", 0.1)
	v.SetDefault("extraction.indent_tolerance", 10.0)
	v.SetDefault("extraction.paragraph_gap_factor", 1.5)
	v.SetDefault("extraction.unboxed_gap", 20.0)
	v.SetDefault("extraction.grid_sensitivity", 0.2)
	v.SetDefault("extraction.min_grid_lines", 2)
	v.SetDefault("extraction.row_cluster_factor", 0.5)
	v.SetDefault("extraction.column_cluster_factor", 1.0)
	v.SetDefault("extraction.low_confidence", 0.6)
	v.SetDefault("extraction.collapse_spaced_letters", true)

	if path := os.Getenv("BOLX_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                         "BOLX_SERVER_PORT",
		"server.read_timeout":                 "BOLX_SERVER_READ_TIMEOUT",
		"server.write_timeout":                "BOLX_SERVER_WRITE_TIMEOUT",
		"server.environment":                  "BOLX_SERVER_ENVIRONMENT",
		"server.max_body_mb":                  "BOLX_SERVER_MAX_BODY_MB",
		"server.max_batch_items":              "BOLX_SERVER_MAX_BATCH_ITEMS",
		"db.host":                             "BOLX_DB_HOST",
		"db.port":                             "BOLX_DB_PORT",
		"db.user":                             "BOLX_DB_USER",
		"db.password":                         "BOLX_DB_PASSWORD",
		"db.name":                             "BOLX_DB_NAME",
		"db.sslmode":                          "BOLX_DB_SSLMODE",
		"db.max_open":                         "BOLX_DB_MAX_OPEN",
		"db.max_idle":                         "BOLX_DB_MAX_IDLE",
		"jwt.secret":                          "BOLX_JWT_SECRET",
		"jwt.access_expiry":                   "BOLX_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                          "BOLX_JWT_ISSUER",
		"auth.api_key_hashes":                 "BOLX_AUTH_API_KEY_HASHES",
		"auth.disabled":                       "BOLX_AUTH_DISABLED",
		"s3.region":                           "BOLX_S3_REGION",
		"s3.bucket":                           "BOLX_S3_BUCKET",
		"s3.endpoint":                         "BOLX_S3_ENDPOINT",
		"s3.access_key":                       "BOLX_S3_ACCESS_KEY",
		"s3.secret_key":                       "BOLX_S3_SECRET_KEY",
		"s3.presign_expiry":                   "BOLX_S3_PRESIGN_EXPIRY",
		"s3.template_prefix":                  "BOLX_S3_TEMPLATE_PREFIX",
		"s3.output_prefix":                    "BOLX_S3_OUTPUT_PREFIX",
		"log.level":                           "BOLX_LOG_LEVEL",
		"log.format":                          "BOLX_LOG_FORMAT",
		"cors.allowed_origins":                "BOLX_CORS_ALLOWED_ORIGINS",
		"queue.enabled":                       "BOLX_QUEUE_ENABLED",
		"queue.poll_interval_secs":            "BOLX_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":                   "BOLX_QUEUE_MAX_RETRIES",
		"queue.concurrency":                   "BOLX_QUEUE_CONCURRENCY",
		"email.provider":                      "BOLX_EMAIL_PROVIDER",
		"email.region":                        "BOLX_EMAIL_REGION",
		"email.from_address":                  "BOLX_EMAIL_FROM_ADDRESS",
		"email.from_name":                     "BOLX_EMAIL_FROM_NAME",
		"email.notify_to":                     "BOLX_EMAIL_NOTIFY_TO",
		"templates.source":                    "BOLX_TEMPLATES_SOURCE",
		"templates.dir":                       "BOLX_TEMPLATES_DIR",
		"output.dir":                          "BOLX_OUTPUT_DIR",
		"output.csv_path":                     "BOLX_OUTPUT_CSV_PATH",
		"output.xlsx_path":                    "BOLX_OUTPUT_XLSX_PATH",
		"extraction.concurrency":              "BOLX_EXTRACTION_CONCURRENCY",
		"extraction.document_timeout":         "BOLX_EXTRACTION_DOCUMENT_TIMEOUT",
		"extraction.reading_band":             "BOLX_EXTRACTION_READING_BAND",
		"extraction.line_merge_tolerance":     "BOLX_EXTRACTION_LINE_MERGE_TOLERANCE",
		"extraction.match_threshold":          "BOLX_EXTRACTION_MATCH_THRESHOLD",
		"extraction.weight_coverage":          "BOLX_EXTRACTION_WEIGHT_COVERAGE",
		"extraction.weight_density":           "BOLX_EXTRACTION_WEIGHT_DENSITY",
		"extraction.weight_geometry":          "BOLX_EXTRACTION_WEIGHT_GEOMETRY",
		"extraction.weight_fingerprint":       "BOLX_EXTRACTION_WEIGHT_FINGERPRINT",
		"extraction.max_shift":                "BOLX_EXTRACTION_MAX_SHIFT",
		"extraction.max_scale":                "BOLX_EXTRACTION_MAX_SCALE",
		"extraction.region_margin":            "BOLX_EXTRACTION_REGION_MARGIN",
		"extraction.region_overlap_tolerance": "BOLX_EXTRACTION_REGION_OVERLAP_TOLERANCE",
		"extraction.indent_tolerance":         "BOLX_EXTRACTION_INDENT_TOLERANCE",
		"extraction.paragraph_gap_factor":     "BOLX_EXTRACTION_PARAGRAPH_GAP_FACTOR",
		"extraction.unboxed_gap":              "BOLX_EXTRACTION_UNBOXED_GAP",
		"extraction.grid_sensitivity":         "BOLX_EXTRACTION_GRID_SENSITIVITY",
		"extraction.min_grid_lines":           "BOLX_EXTRACTION_MIN_GRID_LINES",
		"extraction.row_cluster_factor":       "BOLX_EXTRACTION_ROW_CLUSTER_FACTOR",
		"extraction.column_cluster_factor":    "BOLX_EXTRACTION_COLUMN_CLUSTER_FACTOR",
		"extraction.low_confidence":           "BOLX_EXTRACTION_LOW_CONFIDENCE",
		"extraction.collapse_spaced_letters":  "BOLX_EXTRACTION_COLLAPSE_SPACED_LETTERS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set PORT. Use it unless BOLX_SERVER_PORT is explicit.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BOLX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:          serverPort,
		ReadTimeout:   v.GetDuration("server.read_timeout"),
		WriteTimeout:  v.GetDuration("server.write_timeout"),
		Environment:   v.GetString("server.environment"),
		MaxBodyMB:     v.GetInt64("server.max_body_mb"),
		MaxBatchItems: v.GetInt("server.max_batch_items"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.Auth = AuthConfig{
		APIKeyHashes: splitList(v.GetString("auth.api_key_hashes")),
		Disabled:     v.GetBool("auth.disabled"),
	}
	cfg.S3 = S3Config{
		Region:         v.GetString("s3.region"),
		Bucket:         v.GetString("s3.bucket"),
		Endpoint:       v.GetString("s3.endpoint"),
		AccessKey:      v.GetString("s3.access_key"),
		SecretKey:      v.GetString("s3.secret_key"),
		PresignExpiry:  v.GetInt64("s3.presign_expiry"),
		TemplatePrefix: v.GetString("s3.template_prefix"),
		OutputPrefix:   v.GetString("s3.output_prefix"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Queue = QueueConfig{
		Enabled:          v.GetBool("queue.enabled"),
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		NotifyTo:    v.GetString("email.notify_to"),
	}
	cfg.Templates = TemplatesConfig{
		Source: v.GetString("templates.source"),
		Dir:    v.GetString("templates.dir"),
	}
	cfg.Output = OutputConfig{
		Dir:      v.GetString("output.dir"),
		CSVPath:  v.GetString("output.csv_path"),
		XLSXPath: v.GetString("output.xlsx_path"),
	}
	cfg.Extraction = ExtractionConfig{
		Concurrency:            v.GetInt("extraction.concurrency"),
		DocumentTimeout:        v.GetDuration("extraction.document_timeout"),
		ReadingBand:            v.GetFloat64("extraction.reading_band"),
		LineMergeTolerance:     v.GetFloat64("extraction.line_merge_tolerance"),
		MatchThreshold:         v.GetFloat64("extraction.match_threshold"),
		WeightCoverage:         v.GetFloat64("extraction.weight_coverage"),
		WeightDensity:          v.GetFloat64("extraction.weight_density"),
		WeightGeometry:         v.GetFloat64("extraction.weight_geometry"),
		WeightFingerprint:      v.GetFloat64("extraction.weight_fingerprint"),
		MaxShift:               v.GetFloat64("extraction.max_shift"),
		MaxScale:               v.GetFloat64("extraction.max_scale"),
		RegionMargin:           v.GetFloat64("extraction.region_margin"),
		RegionOverlapTolerance: v.GetFloat64("extraction.region_overlap_tolerance"),
		IndentTolerance:        v.GetFloat64("extraction.indent_tolerance"),
		ParagraphGapFactor:     v.GetFloat64("extraction.paragraph_gap_factor"),
		UnboxedGap:             v.GetFloat64("extraction.unboxed_gap"),
		GridSensitivity:        v.GetFloat64("extraction.grid_sensitivity"),
		MinGridLines:           v.GetInt("extraction.min_grid_lines"),
		RowClusterFactor:       v.GetFloat64("extraction.row_cluster_factor"),
		ColumnClusterFactor:    v.GetFloat64("extraction.column_cluster_factor"),
		LowConfidence:          v.GetFloat64("extraction.low_confidence"),
		CollapseSpacedLetters:  v.GetBool("extraction.collapse_spaced_letters"),
		OCRConfusions:          v.GetStringMapString("extraction.ocr_confusions"),
	}

	if err := cfg.Extraction.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
