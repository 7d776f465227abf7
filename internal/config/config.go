package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OneSignal OneSignalConfig `mapstructure:"onesignal"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// OneSignalConfig holds credentials for the push delivery provider.
type OneSignalConfig struct {
	AppID   string `mapstructure:"app_id"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// JobsConfig drives the scheduled reminder scans. All cron expressions are
// evaluated in the configured timezone so the "today" boundary is the same
// for every client and for the scheduler.
type JobsConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Timezone         string `mapstructure:"timezone"`
	HistoryLimit     int    `mapstructure:"history_limit"`
	InactivityCron   string `mapstructure:"inactivity_cron"`
	WorkoutCron      string `mapstructure:"workout_cron"`
	DietCron         string `mapstructure:"diet_cron"`
	HydrationCron    string `mapstructure:"hydration_cron"`
	WeeklyCron       string `mapstructure:"weekly_cron"`
	CheckinDueCron   string `mapstructure:"checkin_due_cron"`
	CoachSummaryCron string `mapstructure:"coach_summary_cron"`
}

type UploadsConfig struct {
	MaxPhotosPerSet int   `mapstructure:"max_photos_per_set"`
	MaxPhotoSizeMB  int64 `mapstructure:"max_photo_size_mb"`
	MaxPlanSizeMB   int64 `mapstructure:"max_plan_size_mb"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// Nested keys map to env vars: onesignal.app_id -> ONESIGNAL_APP_ID
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "coachtrack")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("onesignal.base_url", "https://onesignal.com")
	viper.SetDefault("jobs.enabled", true)
	viper.SetDefault("jobs.timezone", "Europe/Kyiv")
	viper.SetDefault("jobs.history_limit", 30)
	viper.SetDefault("jobs.inactivity_cron", "0 10 * * *")
	viper.SetDefault("jobs.workout_cron", "0 18 * * *")
	viper.SetDefault("jobs.diet_cron", "30 18 * * *")
	viper.SetDefault("jobs.hydration_cron", "0 15 * * *")
	viper.SetDefault("jobs.weekly_cron", "0 19 * * SUN")
	viper.SetDefault("jobs.checkin_due_cron", "0 9 * * *")
	viper.SetDefault("jobs.coach_summary_cron", "0 8 * * MON")
	viper.SetDefault("uploads.max_photos_per_set", 4)
	viper.SetDefault("uploads.max_photo_size_mb", 10)
	viper.SetDefault("uploads.max_plan_size_mb", 20)

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults may be enough.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
