package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Upstream providers understood by the proxy.
const (
	ProviderAnthropic = "anthropic"
	ProviderArk       = "ark"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	AI       AIConfig
	Client   ClientConfig
	Storage  StorageConfig
	Log      LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	upstream, err := loadUpstreamConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	// Ark 未单独配置时沿用统一的 token 上限
	if ai.MaxTokens == nil {
		maxTokens := upstream.MaxTokens
		ai.MaxTokens = &maxTokens
	}

	return &Config{
		Server:   server,
		Upstream: upstream,
		AI:       ai,
		Client:   client,
		Storage:  storage,
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
	}, nil
}

// UpstreamModel returns the model name of the selected provider.
func (c *Config) UpstreamModel() string {
	if c.Upstream.Provider == ProviderArk {
		return c.AI.Model
	}
	return c.Upstream.Model
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr      string
	StaticDir string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	staticDir := strings.TrimSpace(os.Getenv("STATIC_DIR"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port, StaticDir: staticDir}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, StaticDir: staticDir}, nil
}

// UpstreamConfig describes the chat-completion API the proxy relays to.
type UpstreamConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Version   string
	Model     string
	MaxTokens int
	// Timeout of zero leaves the outbound call unbounded.
	Timeout time.Duration
}

func loadUpstreamConfig() (UpstreamConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("UPSTREAM_PROVIDER", ProviderAnthropic))
	if provider != ProviderAnthropic && provider != ProviderArk {
		return UpstreamConfig{}, fmt.Errorf("invalid UPSTREAM_PROVIDER value: %q", provider)
	}

	maxTokens := 1024
	if override, err := parseOptionalIntEnv("CHAT_MAX_TOKENS"); err != nil {
		return UpstreamConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return UpstreamConfig{}, fmt.Errorf("invalid CHAT_MAX_TOKENS value %d: must be positive", *override)
		}
		maxTokens = *override
	}

	timeout, err := parseDurationEnv("UPSTREAM_TIMEOUT", 0)
	if err != nil {
		return UpstreamConfig{}, err
	}

	return UpstreamConfig{
		Provider:  provider,
		APIKey:    strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		BaseURL:   strings.TrimRight(getEnvOrDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"), "/"),
		Version:   getEnvOrDefault("ANTHROPIC_VERSION", "2023-06-01"),
		Model:     getEnvOrDefault("CHAT_MODEL", "claude-sonnet-4-5-20250929"),
		MaxTokens: maxTokens,
		Timeout:   timeout,
	}, nil
}

// AIConfig 描述 Ark 大模型相关配置。
type AIConfig struct {
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	SystemPrompt string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		SystemPrompt: strings.TrimSpace(os.Getenv("ARK_SYSTEM_PROMPT")),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
	}, nil
}

// ClientConfig 描述终端客户端的行为。
type ClientConfig struct {
	APIURL        string
	BannerTTL     time.Duration
	ClearAllDelay time.Duration
}

func loadClientConfig() (ClientConfig, error) {
	bannerTTL, err := parseDurationEnv("CHAT_BANNER_TTL", 5*time.Second)
	if err != nil {
		return ClientConfig{}, err
	}

	clearAllDelay, err := parseDurationEnv("CHAT_CLEAR_ALL_DELAY", 300*time.Millisecond)
	if err != nil {
		return ClientConfig{}, err
	}

	return ClientConfig{
		APIURL:        getEnvOrDefault("CHAT_API_URL", "http://localhost:3000/api/chat"),
		BannerTTL:     bannerTTL,
		ClearAllDelay: clearAllDelay,
	}, nil
}

// StorageConfig 描述会话持久化后端。
type StorageConfig struct {
	Backend   string
	Path      string
	Key       string
	RedisAddr string
}

func loadStorageConfig() (StorageConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("CHAT_STORE", "file"))
	switch backend {
	case "memory", "file", "bolt", "sqlite", "redis":
	default:
		return StorageConfig{}, fmt.Errorf("invalid CHAT_STORE value: %q", backend)
	}

	path := strings.TrimSpace(os.Getenv("CHAT_STORE_PATH"))
	if path == "" {
		path = DefaultStorePath(backend)
	}

	return StorageConfig{
		Backend:   backend,
		Path:      path,
		Key:       getEnvOrDefault("CHAT_STORE_KEY", "lingochainChats"),
		RedisAddr: getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
	}, nil
}

// DefaultStorePath returns the on-disk location used when CHAT_STORE_PATH is unset.
func DefaultStorePath(backend string) string {
	base := ".lingochain"
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		base = filepath.Join(home, ".lingochain")
	}

	switch backend {
	case "file":
		return filepath.Join(base, "store")
	case "bolt":
		return filepath.Join(base, "chats.bolt")
	case "sqlite":
		return filepath.Join(base, "chats.db")
	default:
		return ""
	}
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string
	Format string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// 纯数字按秒处理。
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
