package model

import "time"

// ----------------------------------------------------
// ================ Config ================
// LogConfig holds configuration for the global logger
type LogConfig struct {
	Level      string `default:"info" yaml:"level"`
	Format     string `default:"json" yaml:"format"`
	Output     string `default:"stdout" yaml:"output"`
	FilePath   string `envconfig:"FILE_PATH" default:"logs/concierge.log" yaml:"file_path"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"rfc3339" yaml:"time_format"`
}

// EngineConfig holds the conversational pipeline settings
type EngineConfig struct {
	Language          string        `default:"en" yaml:"language"`
	GreetingRate      float64       `envconfig:"GREETING_RATE" default:"0.3" yaml:"greeting_rate"`
	SentenceLimit     int           `envconfig:"SENTENCE_LIMIT" default:"2" yaml:"sentence_limit"`
	PatternCapacity   int           `envconfig:"PATTERN_CAPACITY" default:"500" yaml:"pattern_capacity"`
	ConversationLimit int           `envconfig:"CONVERSATION_LIMIT" default:"1000" yaml:"conversation_limit"`
	MessageLimit      int           `envconfig:"MESSAGE_LIMIT" default:"1000" yaml:"message_limit"`
	SessionLimit      int           `envconfig:"SESSION_LIMIT" default:"1000" yaml:"session_limit"`
	BookingTTL        time.Duration `envconfig:"BOOKING_TTL" default:"30m" yaml:"booking_ttl"`
	MaxConversations  int           `envconfig:"MAX_CONVERSATIONS" default:"1000" yaml:"max_conversations"`
	ConversationIdle  time.Duration `envconfig:"CONVERSATION_IDLE" default:"30m" yaml:"conversation_idle"`
	IntentTable       string        `envconfig:"INTENT_TABLE" yaml:"intent_table"`
	UpsellPolicy      string        `envconfig:"UPSELL_POLICY" yaml:"upsell_policy"`
}

// StorageConfig selects and configures the blob backend
type StorageConfig struct {
	Backend    string `default:"memory" yaml:"backend"` // memory, file, redis, sqlite
	Dir        string `default:"data/memory" yaml:"dir"`
	RedisURL   string `envconfig:"REDIS_URL" yaml:"redis_url"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"data/concierge.db" yaml:"sqlite_path"`
	Prefix     string `default:"concierge" yaml:"prefix"`
}

// ServerConfig holds HTTP transport settings
type ServerConfig struct {
	Addr            string        `default:":8080" yaml:"addr"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" yaml:"shutdown_timeout"`
	MaxMessageSize  int64         `envconfig:"MAX_MESSAGE_SIZE" default:"8192" yaml:"max_message_size"`
}
