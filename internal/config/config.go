package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/viper"
)

type Config struct {
	Environment   string         `mapstructure:"environment"`
	LogLevel      string         `mapstructure:"log_level"`
	ParameterPath string         `mapstructure:"parameter_path"`
	Tools         ToolConfig     `mapstructure:"tools"`
	Calendar      CalendarConfig `mapstructure:"calendar"`
	Digest        DigestConfig   `mapstructure:"digest"`
	Archive       ArchiveConfig  `mapstructure:"archive"`
	Bedrock       BedrockConfig  `mapstructure:"bedrock"`
}

// ToolConfig selects which agent tools are registered. Resolved once at startup.
type ToolConfig struct {
	EnableStockTool    bool `mapstructure:"enable_stock_tool"`
	EnableRiskTool     bool `mapstructure:"enable_risk_tool"`
	EnableCalendarTool bool `mapstructure:"enable_calendar_tool"`
}

const (
	ToolStockPrice     = "get_stock_price"
	ToolRiskScorer     = "assess_client_suitability"
	ToolMarketCalendar = "check_market_holidays"
)

// Enabled lists enabled tool names in registration order.
func (t ToolConfig) Enabled() []string {
	out := make([]string, 0, 3)
	if t.EnableStockTool {
		out = append(out, ToolStockPrice)
	}
	if t.EnableRiskTool {
		out = append(out, ToolRiskScorer)
	}
	if t.EnableCalendarTool {
		out = append(out, ToolMarketCalendar)
	}
	return out
}

type CalendarConfig struct {
	NagerBaseURL     string        `mapstructure:"nager_base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	DefaultCountry   string        `mapstructure:"default_country"`
	DefaultDaysAhead int           `mapstructure:"default_days_ahead"`
	MaxDaysAhead     int           `mapstructure:"max_days_ahead"`
	CacheTable       string        `mapstructure:"cache_table"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

type DigestConfig struct {
	Countries []string `mapstructure:"countries"`
	DaysAhead int      `mapstructure:"days_ahead"`
	TopicArn  string   `mapstructure:"topic_arn"`
}

type ArchiveConfig struct {
	Bucket string       `mapstructure:"bucket"`
	Prefix string       `mapstructure:"prefix"`
	Athena AthenaConfig `mapstructure:"athena"`
}

// AthenaConfig enables partition registration when Database, Table and Output are all set.
type AthenaConfig struct {
	Database  string `mapstructure:"database"`
	Table     string `mapstructure:"table"`
	Workgroup string `mapstructure:"workgroup"`
	Output    string `mapstructure:"output"`
}

func (a AthenaConfig) Enabled() bool {
	return a.Database != "" && a.Table != "" && a.Output != ""
}

type BedrockConfig struct {
	ModelID   string `mapstructure:"model_id"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// envBindings keeps the historical flat variable names working next to the
// nested TOOLS_ENABLE_RISK_TOOL style that AutomaticEnv derives.
var envBindings = map[string]string{
	"tools.enable_stock_tool":    "ENABLE_STOCK_TOOL",
	"tools.enable_risk_tool":     "ENABLE_RISK_TOOL",
	"tools.enable_calendar_tool": "ENABLE_CALENDAR_TOOL",
	"bedrock.model_id":           "BEDROCK_MODEL_ID",
	"calendar.nager_base_url":    "NAGER_BASE_URL",
	"calendar.cache_table":       "HOLIDAY_CACHE_TABLE",
	"digest.countries":           "DIGEST_COUNTRIES",
	"digest.topic_arn":           "DIGEST_TOPIC_ARN",
	"archive.bucket":             "ARCHIVE_BUCKET",
	"archive.prefix":             "ARCHIVE_PREFIX",
	"archive.athena.database":    "ATHENA_DATABASE",
	"archive.athena.table":       "ATHENA_TABLE",
	"archive.athena.workgroup":   "ATHENA_WORKGROUP",
	"archive.athena.output":      "ATHENA_OUTPUT",
	"parameter_path":             "PARAMETER_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("parameter_path", "")

	v.SetDefault("tools.enable_stock_tool", false)
	v.SetDefault("tools.enable_risk_tool", false)
	v.SetDefault("tools.enable_calendar_tool", false)

	v.SetDefault("calendar.nager_base_url", "https://date.nager.at/api/v3")
	v.SetDefault("calendar.timeout", "10s")
	v.SetDefault("calendar.default_country", "AU")
	v.SetDefault("calendar.default_days_ahead", 7)
	v.SetDefault("calendar.max_days_ahead", 365)
	v.SetDefault("calendar.cache_table", "")
	v.SetDefault("calendar.cache_ttl", "24h")

	v.SetDefault("digest.countries", []string{"AU"})
	v.SetDefault("digest.days_ahead", 7)
	v.SetDefault("digest.topic_arn", "")

	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "holidays/")
	v.SetDefault("archive.athena.database", "")
	v.SetDefault("archive.athena.table", "")
	v.SetDefault("archive.athena.workgroup", "primary")
	v.SetDefault("archive.athena.output", "")

	v.SetDefault("bedrock.model_id", "anthropic.claude-3-5-sonnet-20241022-v2:0")
	v.SetDefault("bedrock.max_tokens", 1024)
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return v, nil
}

// Load resolves configuration from defaults and environment variables.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// ParameterClient is the subset of the SSM API used for the parameter overlay.
type ParameterClient interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadWithParameters is Load plus an SSM Parameter Store overlay: when
// PARAMETER_PATH is set, <path>/tools/enable_risk_tool overrides tools.enable_risk_tool.
func LoadWithParameters(ctx context.Context, client ParameterClient) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	path := strings.TrimRight(strings.TrimSpace(v.GetString("parameter_path")), "/")
	if path != "" && client != nil {
		params, err := fetchParameters(ctx, client, path)
		if err != nil {
			return nil, err
		}
		for key, value := range params {
			v.Set(key, value)
		}
	}
	return decode(v)
}

func fetchParameters(ctx context.Context, client ParameterClient, path string) (map[string]string, error) {
	out := map[string]string{}
	var next *string
	for {
		page, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(path),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      next,
		})
		if err != nil {
			return nil, fmt.Errorf("ssm GetParametersByPath %s: %w", path, err)
		}
		for _, p := range page.Parameters {
			name := strings.TrimPrefix(aws.ToString(p.Name), path)
			key := strings.ToLower(strings.ReplaceAll(strings.Trim(name, "/"), "/", "."))
			if key == "" {
				continue
			}
			out[key] = aws.ToString(p.Value)
		}
		if aws.ToString(page.NextToken) == "" {
			break
		}
		next = page.NextToken
	}
	return out, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Calendar.DefaultCountry = strings.ToUpper(strings.TrimSpace(cfg.Calendar.DefaultCountry))
	cfg.Digest.Countries = normalizeCountries(cfg.Digest.Countries)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeCountries(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, c := range in {
		// a single env value "AU,US" may arrive unsplit
		for _, part := range strings.Split(c, ",") {
			cc := strings.ToUpper(strings.TrimSpace(part))
			if cc == "" || seen[cc] {
				continue
			}
			seen[cc] = true
			out = append(out, cc)
		}
	}
	return out
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.Calendar.Timeout <= 0 {
		return fmt.Errorf("calendar.timeout must be positive")
	}
	if c.Calendar.MaxDaysAhead < 0 || c.Calendar.MaxDaysAhead > 365 {
		return fmt.Errorf("calendar.max_days_ahead must be between 0 and 365, got %d", c.Calendar.MaxDaysAhead)
	}
	if c.Calendar.DefaultDaysAhead < 0 || c.Calendar.DefaultDaysAhead > c.Calendar.MaxDaysAhead {
		return fmt.Errorf("calendar.default_days_ahead must be between 0 and %d, got %d",
			c.Calendar.MaxDaysAhead, c.Calendar.DefaultDaysAhead)
	}
	if c.Digest.DaysAhead < 0 || c.Digest.DaysAhead > c.Calendar.MaxDaysAhead {
		return fmt.Errorf("digest.days_ahead must be between 0 and %d, got %d",
			c.Calendar.MaxDaysAhead, c.Digest.DaysAhead)
	}
	if c.Archive.Athena.Enabled() && !strings.HasPrefix(c.Archive.Athena.Output, "s3://") {
		return fmt.Errorf("archive.athena.output must start with s3://")
	}
	if strings.TrimSpace(c.Bedrock.ModelID) == "" {
		return fmt.Errorf("bedrock.model_id is required")
	}
	return nil
}
