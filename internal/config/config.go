package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	DBDSN        string
	MediaDir     string
	LogFile      string
	BotPassword  string
	ChatToken    string
	StateBackend string // sqlite | badger
	StateDir     string
	StateTTL     time.Duration
	TimeZone     string
	CodeAttempts int
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[config] no .env file found, using environment")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DSN", "warehouse.db") // sqlite file in project root
	v.SetDefault("MEDIA_DIR", "./images")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("BOT_PASSWORD", "")
	v.SetDefault("CHAT_TOKEN", "")
	v.SetDefault("STATE_BACKEND", "sqlite")
	v.SetDefault("STATE_DIR", "./state")
	v.SetDefault("STATE_TTL", "0s")
	v.SetDefault("TIME_ZONE", "Local")
	v.SetDefault("CODE_ATTEMPTS", 5)

	cfg := Config{
		Port:         v.GetString("PORT"),
		DBDSN:        v.GetString("DB_DSN"),
		MediaDir:     v.GetString("MEDIA_DIR"),
		LogFile:      v.GetString("LOG_FILE"),
		BotPassword:  v.GetString("BOT_PASSWORD"),
		ChatToken:    v.GetString("CHAT_TOKEN"),
		StateBackend: v.GetString("STATE_BACKEND"),
		StateDir:     v.GetString("STATE_DIR"),
		StateTTL:     v.GetDuration("STATE_TTL"),
		TimeZone:     v.GetString("TIME_ZONE"),
		CodeAttempts: v.GetInt("CODE_ATTEMPTS"),
	}
	if cfg.CodeAttempts < 1 {
		cfg.CodeAttempts = 1
	}
	if cfg.BotPassword == "" {
		log.Println("[config] BOT_PASSWORD is empty, chat login is disabled")
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s STATE_BACKEND=%s STATE_TTL=%s TIME_ZONE=%s",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.StateBackend, cfg.StateTTL, cfg.TimeZone)
	return cfg
}

// Location resolves TimeZone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		log.Printf("[config] unknown TIME_ZONE %q, using Local", c.TimeZone)
		return time.Local
	}
	return loc
}
