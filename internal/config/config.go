package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type EngineConfig struct {
	Env          string `yaml:"env" env:"ENGINE_ENV" env-default:"local"`
	GRPCServer   `yaml:"grpc_server"`
	EngineDB     `yaml:"engine_db"`
	Migrations   `yaml:"migrations"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka_service"`
	Redis        `yaml:"redis"`
	Metrics      `yaml:"metrics"`
	Sweep        `yaml:"sweep"`
	Placement    `yaml:"placement"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50061"`
}

type EngineDB struct {
	Dsn             string        `yaml:"dsn" env:"ENGINE_DB_DSN" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"30m"`
}

type Migrations struct {
	Path string `yaml:"path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Host               string `yaml:"host" env:"KAFKA_HOST" env-default:"localhost"`
	Port               string `yaml:"port" env:"KAFKA_PORT" env-default:"9092"`
	NotificationsTopic string `yaml:"notifications_topic" env-default:"binary-notifications"`
	VolumeTopic        string `yaml:"volume_topic" env-default:"binary-volume-events"`
	GroupID            string `yaml:"group_id" env-default:"binary-engine"`
	ConsumerEnabled    bool   `yaml:"consumer_enabled" env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`
}

type Redis struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"1m"`
}

type Metrics struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR" env-default:":9101"`
}

type Sweep struct {
	Enabled bool   `yaml:"enabled" env:"SWEEP_ENABLED" env-default:"false"`
	Spec    string `yaml:"spec" env:"SWEEP_SPEC" env-default:"0 */15 * * * *"`
}

type Placement struct {
	MaxRetries int `yaml:"max_retries" env-default:"3"`
}

func MustLoad() *EngineConfig {

	// Processing env config variable and file
	configPath := os.Getenv("ENGINE_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("ENGINE_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return cfg
}

// Load reads YAML from path; environment variables override file values.
func Load(path string) (*EngineConfig, error) {
	var cfg EngineConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
