package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	Port        string
	ClientURL   string

	JWTSecret string

	SendgridAPIKey    string
	SendgridFromEmail string
	SlackWebhookURL   string

	ReminderHour          int
	ReminderLookaheadDays int
}

func Load() *Config {
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("CLIENT_URL", "http://localhost:5173")
	viper.SetDefault("REMINDER_HOUR", 9)
	viper.SetDefault("REMINDER_LOOKAHEAD_DAYS", 3)

	return &Config{
		DatabaseURL:           viper.GetString("DATABASE_URL"),
		Port:                  viper.GetString("PORT"),
		ClientURL:             viper.GetString("CLIENT_URL"),
		JWTSecret:             viper.GetString("JWT_SECRET"),
		SendgridAPIKey:        viper.GetString("SENDGRID_API_KEY"),
		SendgridFromEmail:     viper.GetString("SENDGRID_FROM_EMAIL"),
		SlackWebhookURL:       viper.GetString("SLACK_WEBHOOK_URL"),
		ReminderHour:          viper.GetInt("REMINDER_HOUR"),
		ReminderLookaheadDays: viper.GetInt("REMINDER_LOOKAHEAD_DAYS"),
	}
}
