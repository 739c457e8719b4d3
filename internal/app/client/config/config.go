package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	envcfg "sampark/internal/config"
)

const (
	defaultServerAddress = "localhost:8000"
	defaultListenAddress = "127.0.0.1:8765"
	defaultConfigDir     = ".sampark"
	defaultSyncInterval  = 60 * time.Second
	defaultSettleDelay   = time.Second
	defaultPingTimeout   = 5 * time.Second
	defaultHTTPTimeout   = 30 * time.Second
	defaultRetention     = time.Hour
	defaultNetworkPoll   = 5 * time.Second
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	ServerAddress string `mapstructure:"server_address"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
	APIToken      string `mapstructure:"api_token"`
	ConfigDir     string `mapstructure:"config_dir"`
	TokenPath     string `mapstructure:"token_path"`
	DataPath      string `mapstructure:"data_path"`
	LogFile       string `mapstructure:"log_file"`
	PanchayatID   string `mapstructure:"panchayat_id"`

	ListenAddress string `mapstructure:"listen_address"`
	LocalAPIToken string `mapstructure:"local_api_token"`

	SyncInterval        time.Duration `mapstructure:"sync_interval"`
	SettleDelay         time.Duration `mapstructure:"sync_settle_delay"`
	PingTimeout         time.Duration `mapstructure:"ping_timeout"`
	HTTPTimeout         time.Duration `mapstructure:"http_timeout"`
	CompletedRetention  time.Duration `mapstructure:"sync_completed_retention"`
	NetworkPollInterval time.Duration `mapstructure:"network_poll_interval"`

	// ConfigFile пуст, если файл конфигурации не найден.
	ConfigFile string `mapstructure:"-"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env, необязательный config.yaml и переменные окружения.
func Load() (*Config, error) {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", envcfg.EnvLocal)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("ENABLE_TLS", false)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("LISTEN_ADDRESS", defaultListenAddress)
	viper.SetDefault("SYNC_INTERVAL", defaultSyncInterval)
	viper.SetDefault("SYNC_SETTLE_DELAY", defaultSettleDelay)
	viper.SetDefault("PING_TIMEOUT", defaultPingTimeout)
	viper.SetDefault("HTTP_TIMEOUT", defaultHTTPTimeout)
	viper.SetDefault("SYNC_COMPLETED_RETENTION", defaultRetention)
	viper.SetDefault("NETWORK_POLL_INTERVAL", defaultNetworkPoll)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("создание директории конфигурации: %w", err)
	}

	// Файл конфигурации необязателен, переменные окружения имеют приоритет
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("чтение файла конфигурации: %w", err)
		}
	}

	dataPath := viper.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, "sampark.db")
	}

	logFile := viper.GetString("LOG_FILE")
	if logFile == "" {
		logFile = filepath.Join(configDir, "sampark.log")
	}

	cfg := &Config{
		Env:                 envcfg.NormalizeEnv(viper.GetString("APP_ENV")),
		ServerAddress:       viper.GetString("SERVER_ADDRESS"),
		EnableTLS:           viper.GetBool("ENABLE_TLS"),
		APIToken:            viper.GetString("API_TOKEN"),
		ConfigDir:           configDir,
		TokenPath:           filepath.Join(configDir, "token"),
		DataPath:            dataPath,
		LogFile:             logFile,
		PanchayatID:         viper.GetString("PANCHAYAT_ID"),
		ListenAddress:       viper.GetString("LISTEN_ADDRESS"),
		LocalAPIToken:       viper.GetString("LOCAL_API_TOKEN"),
		SyncInterval:        viper.GetDuration("SYNC_INTERVAL"),
		SettleDelay:         viper.GetDuration("SYNC_SETTLE_DELAY"),
		PingTimeout:         viper.GetDuration("PING_TIMEOUT"),
		HTTPTimeout:         viper.GetDuration("HTTP_TIMEOUT"),
		CompletedRetention:  viper.GetDuration("SYNC_COMPLETED_RETENTION"),
		NetworkPollInterval: viper.GetDuration("NETWORK_POLL_INTERVAL"),
		ConfigFile:          viper.ConfigFileUsed(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval должен быть положительным, получено %s", c.SyncInterval)
	}
	if c.PingTimeout <= 0 {
		return fmt.Errorf("ping_timeout должен быть положительным, получено %s", c.PingTimeout)
	}
	if c.NetworkPollInterval <= 0 {
		return fmt.Errorf("network_poll_interval должен быть положительным, получено %s", c.NetworkPollInterval)
	}
	return nil
}

// BaseURL собирает адрес удаленного API
func (c *Config) BaseURL() string {
	if strings.HasPrefix(c.ServerAddress, "http://") || strings.HasPrefix(c.ServerAddress, "https://") {
		return strings.TrimRight(c.ServerAddress, "/")
	}
	scheme := "http"
	if c.EnableTLS {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimRight(c.ServerAddress, "/")
}

// ResolveToken возвращает токен из окружения или из сохраненного файла.
func (c *Config) ResolveToken() string {
	if c.APIToken != "" {
		return c.APIToken
	}
	data, err := os.ReadFile(c.TokenPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken сохраняет токен с правами только для владельца.
func (c *Config) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenPath), 0o700); err != nil {
		return fmt.Errorf("создание директории для токена: %w", err)
	}
	if err := os.WriteFile(c.TokenPath, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("сохранение токена: %w", err)
	}
	return nil
}

// Watch вызывает fn с новым интервалом синхронизации при изменении файла конфигурации.
// Без файла конфигурации ничего не делает.
func (c *Config) Watch(fn func(interval time.Duration)) {
	if c.ConfigFile == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		interval := viper.GetDuration("SYNC_INTERVAL")
		if interval <= 0 || interval == c.SyncInterval {
			return
		}
		c.SyncInterval = interval
		fn(interval)
	})
	viper.WatchConfig()
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == envcfg.EnvProd
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == envcfg.EnvDev
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == envcfg.EnvLocal || c.Env == ""
}
