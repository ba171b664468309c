package config

import (
	"fmt"
	"strings"

	"github.com/newsdesk/newsroom/internal/db"
	"github.com/newsdesk/newsroom/internal/notify"
	"github.com/newsdesk/newsroom/internal/scheduler"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig
	Database  db.Config
	Auth      AuthConfig
	Blob      BlobConfig
	SMTP      notify.SMTPConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr           string
	BaseURL        string
	AllowedOrigins []string
}

// AuthConfig holds the JWT verification settings.
type AuthConfig struct {
	JWTSecret string
}

// BlobConfig holds Cloudinary credentials.
type BlobConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// SchedulerConfig extends the scheduler's cron settings with the digest size.
type SchedulerConfig struct {
	scheduler.Config
	DigestSize int
}

// Load reads config.yaml from the given path, with NEWSROOM_-prefixed
// environment overrides (e.g. NEWSROOM_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("NEWSROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	dbDefaults := db.DefaultConfig()
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("blob.folder", "newsroom")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("scheduler.promote_spec", "* * * * *")
	v.SetDefault("scheduler.digest_spec", "0 9 * * 0")
	v.SetDefault("scheduler.timezone", "")
	v.SetDefault("scheduler.digest_size", 5)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use defaults + env.
		fmt.Println("No config.yaml found, using defaults and env vars")
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			BaseURL:        v.GetString("server.base_url"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Database: db.Config{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		Blob: BlobConfig{
			CloudName: v.GetString("blob.cloud_name"),
			APIKey:    v.GetString("blob.api_key"),
			APISecret: v.GetString("blob.api_secret"),
			Folder:    v.GetString("blob.folder"),
		},
		SMTP: notify.SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		Scheduler: SchedulerConfig{
			Config: scheduler.Config{
				PromoteSpec: v.GetString("scheduler.promote_spec"),
				DigestSpec:  v.GetString("scheduler.digest_spec"),
				Timezone:    v.GetString("scheduler.timezone"),
			},
			DigestSize: v.GetInt("scheduler.digest_size"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("auth.jwt_secret is required")
	}

	return cfg, nil
}
