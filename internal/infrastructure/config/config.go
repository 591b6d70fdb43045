package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Line        LineConfig      `mapstructure:"line"`
	Bot         BotConfig       `mapstructure:"bot"`
	Session     SessionConfig   `mapstructure:"session"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Menu        MenuConfig      `mapstructure:"menu"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogDir      string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// LineConfig LINE Messaging API 設定
type LineConfig struct {
	ChannelSecret      string        `mapstructure:"channel_secret"`
	ChannelAccessToken string        `mapstructure:"channel_access_token"`
	APIBaseURL         string        `mapstructure:"api_base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	EventDedupWindow   time.Duration `mapstructure:"event_dedup_window"` // 同一 webhookEventId 視為重送的時間窗
}

// BotConfig 對話流程設定
type BotConfig struct {
	ConfirmKeyword string `mapstructure:"confirm_keyword"`
	CancelKeyword  string `mapstructure:"cancel_keyword"`
	Timezone       string `mapstructure:"timezone"`
	DefaultName    string `mapstructure:"default_name"`
}

// SessionConfig 待確認訂單的暫存設定
type SessionConfig struct {
	Backend         string        `mapstructure:"backend"` // memory | redis
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MenuConfig 菜單設定，未填的欄位使用內建菜單
type MenuConfig struct {
	File        string             `mapstructure:"file"`
	Ingredients []string           `mapstructure:"ingredients"`
	Exclusions  []string           `mapstructure:"exclusions"`
	Inclusions  []string           `mapstructure:"inclusions"`
	Corrections []CorrectionConfig `mapstructure:"corrections"`
	Pricing     []PriceTierConfig  `mapstructure:"pricing"`
	MaxQuantity int                `mapstructure:"max_quantity"`
}

// CorrectionConfig 錯字修正
type CorrectionConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// PriceTierConfig 價格級距
type PriceTierConfig struct {
	MinIngredients int `mapstructure:"min_ingredients"`
	UnitPrice      int `mapstructure:"unit_price"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時略過）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("line.channel_secret", "LINE_CHANNEL_SECRET")
	v.BindEnv("line.channel_access_token", "LINE_CHANNEL_ACCESS_TOKEN")
	v.BindEnv("line.event_dedup_window", "LINE_EVENT_DEDUP_WINDOW")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("session.backend", "SESSION_BACKEND")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("menu.file", "MENU_FILE")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("log_dir", "LOG_DIR")

	// 菜單檔（yaml / json）
	if file := v.GetString("menu.file"); file != "" {
		if err := MergeMenuFile(v, file); err != nil {
			return nil, err
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MergeMenuFile 合併菜單檔到 viper 設定
func MergeMenuFile(v *viper.Viper, file string) error {
	v.SetConfigFile(file)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read menu file %s: %w", file, err)
	}
	return nil
}

// LoadMenu 只載入菜單設定（CLI 使用）
func LoadMenu(file string) (MenuConfig, error) {
	v := viper.New()
	var menu MenuConfig
	if file != "" {
		if err := MergeMenuFile(v, file); err != nil {
			return menu, err
		}
	}
	if err := v.UnmarshalKey("menu", &menu); err != nil {
		return menu, fmt.Errorf("failed to unmarshal menu: %w", err)
	}
	return menu, nil
}

// MaskSecret 遮罩密鑰，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "sandwich-bot")

	// 伺服器設定
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// LINE 設定
	v.SetDefault("line.api_base_url", "https://api.line.me")
	v.SetDefault("line.timeout", "10s")
	v.SetDefault("line.event_dedup_window", "24h")

	// 對話設定
	v.SetDefault("bot.confirm_keyword", "ยืนยัน")
	v.SetDefault("bot.cancel_keyword", "ยกเลิก")
	v.SetDefault("bot.timezone", "Asia/Bangkok")
	v.SetDefault("bot.default_name", "ลูกค้า")

	// 暫存設定
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.max_size", 10000)
	v.SetDefault("session.cleanup_interval", "10m")

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "2s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 空密鑰的簽章任何人都能計算
	if config.Line.ChannelSecret == "" {
		return fmt.Errorf("line channel secret is required")
	}
	if config.Line.ChannelAccessToken == "" {
		return fmt.Errorf("line channel access token is required")
	}
	if config.Line.EventDedupWindow <= 0 {
		return fmt.Errorf("invalid line event dedup window")
	}

	switch config.Session.Backend {
	case "memory":
		if config.Session.MaxSize <= 0 {
			return fmt.Errorf("invalid session max size")
		}
		if config.Session.CleanupInterval <= 0 {
			return fmt.Errorf("invalid session cleanup interval")
		}
	case "redis":
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", config.Session.Backend)
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	if _, err := time.LoadLocation(config.Bot.Timezone); err != nil {
		return fmt.Errorf("invalid bot timezone: %w", err)
	}

	return nil
}
