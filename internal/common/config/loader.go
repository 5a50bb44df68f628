// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"answer-bot/internal/models"
)

const (
	DefaultDeploymentName = "production"
	DefaultLanguage       = "en"
	DefaultParticipantID  = "user"
	DefaultConversationID = "1"
	DefaultCorrelationID  = "answer-bot"

	DefaultKnowledgeBaseIntent = "dentist-chat-intent"
	DefaultSlotFillingIntent   = "appointment-time"
	DefaultAvailabilityIntent  = "getAvailability-Intent"
	DefaultScheduleIntent      = "scheduleAppointment-Intent"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and lets environment variables override both.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	bindEnvKeys(v)
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	// zero is a valid ratio (never sample), so only an absent key defaults
	if !v.IsSet("tracing.sample_ratio") {
		cfg.Tracing.SampleRatio = 1
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers every known key so AutomaticEnv overrides apply even
// when the key is absent from the yaml files.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"app.name", "app.version", "app.environment",
		"server.address", "server.shutdown_timeout",
		"bot.strategy", "bot.welcome_text", "bot.fallback", "bot.connector_token",
		"language.endpoint_host", "language.scheme", "language.subscription_key",
		"language.project_name", "language.deployment_name", "language.conversation_id",
		"language.participant_id", "language.language", "language.correlation_id",
		"orchestration.knowledge_base_intent", "orchestration.slot_filling_intent",
		"orchestration.availability_intent", "orchestration.schedule_intent",
		"cache.enabled", "cache.ttl", "cache.prefix",
		"redis.address", "redis.password", "redis.db",
		"camunda.enabled", "camunda.broker_address", "camunda.max_jobs_active",
		"camunda.timeout", "camunda.request_timeout",
		"tracing.jaeger_endpoint", "tracing.sample_ratio",
		"logging.level", "logging.format", "logging.output",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// loadEnvFile loads the first .env found from the working directory upwards.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values. Unset
// variables expand to empty so defaults and fallbacks still apply.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills empty language settings from the QnA bot
// environment names.
func overrideEmptyConfig(cfg *Config) {
	overrides := []struct {
		target *string
		env    []string
	}{
		{&cfg.Language.EndpointHost, []string{"QnAEndpointHostName", "LANGUAGE_ENDPOINT_HOST"}},
		{&cfg.Language.SubscriptionKey, []string{"QnAAuthKey", "LANGUAGE_SUBSCRIPTION_KEY"}},
		{&cfg.Language.ProjectName, []string{"QnAProjectName", "LANGUAGE_PROJECT_NAME"}},
		{&cfg.Language.DeploymentName, []string{"QnADeploymentName", "LANGUAGE_DEPLOYMENT_NAME"}},
		{&cfg.Bot.ConnectorToken, []string{"MicrosoftAppToken"}},
	}

	for _, o := range overrides {
		if *o.target != "" {
			continue
		}
		for _, name := range o.env {
			if val := os.Getenv(name); val != "" {
				*o.target = val
				break
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "answer-bot"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":3978"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Bot.Strategy == "" {
		cfg.Bot.Strategy = string(models.StrategyDirectLookup)
	}

	if cfg.Language.Scheme == "" {
		cfg.Language.Scheme = "https"
	}
	if cfg.Language.DeploymentName == "" {
		cfg.Language.DeploymentName = DefaultDeploymentName
	}
	if cfg.Language.ConversationID == "" {
		cfg.Language.ConversationID = DefaultConversationID
	}
	if cfg.Language.ParticipantID == "" {
		cfg.Language.ParticipantID = DefaultParticipantID
	}
	if cfg.Language.Language == "" {
		cfg.Language.Language = DefaultLanguage
	}
	if cfg.Language.CorrelationID == "" {
		cfg.Language.CorrelationID = DefaultCorrelationID
	}

	if cfg.Orchestration.KnowledgeBaseIntent == "" {
		cfg.Orchestration.KnowledgeBaseIntent = DefaultKnowledgeBaseIntent
	}
	if cfg.Orchestration.SlotFillingIntent == "" {
		cfg.Orchestration.SlotFillingIntent = DefaultSlotFillingIntent
	}
	if cfg.Orchestration.AvailabilityIntent == "" {
		cfg.Orchestration.AvailabilityIntent = DefaultAvailabilityIntent
	}
	if cfg.Orchestration.ScheduleIntent == "" {
		cfg.Orchestration.ScheduleIntent = DefaultScheduleIntent
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300000
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "answer"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates settings the process cannot start without.
// Language service credentials are checked per call by the query builder.
func validateConfig(cfg *Config) error {
	if _, err := models.ParseStrategy(cfg.Bot.Strategy); err != nil {
		return fmt.Errorf("bot.strategy: %w", err)
	}

	if cfg.Language.Scheme != "http" && cfg.Language.Scheme != "https" {
		return fmt.Errorf("language.scheme must be http or https, got %q", cfg.Language.Scheme)
	}

	if cfg.Cache.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when cache.enabled is set")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda.enabled is set")
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0,1]")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// Strategy returns the parsed bot strategy. Load has already validated it.
func (c *Config) Strategy() models.Strategy {
	s, err := models.ParseStrategy(c.Bot.Strategy)
	if err != nil {
		return models.StrategyDirectLookup
	}
	return s
}
