package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go-registration-portal/cities"
	"go-registration-portal/logging"
	redis "go-registration-portal/redis"
)

type Config struct {
	ServerConfig ServerConfig `json:"server_config"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	ReceiptPrivateKeyPath string `json:"receipt_private_key_path"`
	ReceiptIssuer         string `json:"receipt_issuer"`

	AuthServiceUrl string `json:"auth_service_url"`
	AuthServiceKey string `json:"auth_service_key,omitempty"`

	NatsUrl     string `json:"nats_url,omitempty"`
	NatsSubject string `json:"nats_subject,omitempty"`

	Cities           []string `json:"cities,omitempty"`
	CityCacheSeconds int      `json:"city_cache_seconds,omitempty"`

	StorageType         string                    `json:"storage_type"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use")
	flag.Parse()

	if *configPath == "" {
		slog.Error("please provide a config path using the --config flag")
		os.Exit(1)
	}

	config, err := readConfigFile(*configPath)
	if err != nil {
		slog.Error("failed to read config file", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(config.LogLevel, config.LogFormat)
	slog.Info("Using config", "path", *configPath)
	slog.Info("Hosting on", "host", config.ServerConfig.Host, "port", config.ServerConfig.Port)

	receiptCreator, err := NewReceiptCreator(config.ReceiptPrivateKeyPath, config.ReceiptIssuer)
	if err != nil {
		slog.Error("failed to instantiate receipt creator", "error", err)
		os.Exit(1)
	}

	profileStore, cityDirectory, err := createStorageBackends(&config)
	if err != nil {
		slog.Error("failed to instantiate profile storage", "error", err)
		os.Exit(1)
	}

	registrationSink, err := createRegistrationSink(&config)
	if err != nil {
		slog.Error("failed to connect registration sink", "error", err)
		os.Exit(1)
	}
	defer registrationSink.Close()

	serverState := ServerState{
		profileStore:     profileStore,
		cityDirectory:    cityDirectory,
		formValidator:    formValidatorImpl{},
		receiptCreator:   receiptCreator,
		authClient:       NewIdentityServiceClient(config.AuthServiceUrl, config.AuthServiceKey),
		registrationSink: registrationSink,
	}

	server, err := NewServer(&serverState, config.ServerConfig)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	err = server.ListenAndServe()
	if err != nil {
		slog.Error("failed to listen and serve", "error", err)
		os.Exit(1)
	}
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func createStorageBackends(config *Config) (ProfileStore, cities.Directory, error) {
	cacheTtl := time.Duration(config.CityCacheSeconds) * time.Second
	if cacheTtl <= 0 {
		cacheTtl = 60 * time.Second
	}

	if config.StorageType == "redis" {
		slog.Info("Using redis profile storage")
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		store := NewRedisProfileStore(client, config.RedisConfig.Namespace)
		directory := cities.NewRedisDirectory(client, config.RedisConfig.Namespace, cacheTtl)
		return store, directory, nil
	}
	if config.StorageType == "redis_sentinel" {
		slog.Info("Using redis sentinel profile storage")
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, nil, err
		}
		store := NewRedisProfileStore(client, config.RedisSentinelConfig.Namespace)
		directory := cities.NewRedisDirectory(client, config.RedisSentinelConfig.Namespace, cacheTtl)
		return store, directory, nil
	}
	if config.StorageType == "memory" {
		slog.Info("Using in memory profile storage")
		return NewInMemoryProfileStore(), cities.NewStaticDirectory(config.Cities...), nil
	}
	return nil, nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}

func createRegistrationSink(config *Config) (RegistrationSink, error) {
	if config.NatsUrl == "" {
		slog.Info("No NATS url configured, accepted registrations are not published")
		return NoopSink{}, nil
	}
	subject := config.NatsSubject
	if subject == "" {
		subject = "registrations.accepted"
	}
	return NewNATSSink(config.NatsUrl, subject)
}
