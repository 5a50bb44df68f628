// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Bot           BotConfig           `mapstructure:"bot"`
	Language      LanguageConfig      `mapstructure:"language"`
	Orchestration OrchestrationConfig `mapstructure:"orchestration"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Camunda       CamundaConfig       `mapstructure:"camunda"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// BotConfig selects the resolution strategy and the bot's fixed texts.
type BotConfig struct {
	Strategy       string `mapstructure:"strategy"`
	WelcomeText    string `mapstructure:"welcome_text"`
	Fallback       string `mapstructure:"fallback"`
	ConnectorToken string `mapstructure:"connector_token"`
}

// LanguageConfig holds the conversational language service settings.
type LanguageConfig struct {
	EndpointHost    string `mapstructure:"endpoint_host"`
	Scheme          string `mapstructure:"scheme"`
	SubscriptionKey string `mapstructure:"subscription_key"`
	ProjectName     string `mapstructure:"project_name"`
	DeploymentName  string `mapstructure:"deployment_name"`
	ConversationID  string `mapstructure:"conversation_id"`
	ParticipantID   string `mapstructure:"participant_id"`
	Language        string `mapstructure:"language"`
	CorrelationID   string `mapstructure:"correlation_id"`
}

// OrchestrationConfig names the intents the orchestration extractor routes on.
type OrchestrationConfig struct {
	KnowledgeBaseIntent string `mapstructure:"knowledge_base_intent"`
	SlotFillingIntent   string `mapstructure:"slot_filling_intent"`
	AvailabilityIntent  string `mapstructure:"availability_intent"`
	ScheduleIntent      string `mapstructure:"schedule_intent"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // milliseconds
	Prefix  string `mapstructure:"prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type TracingConfig struct {
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
