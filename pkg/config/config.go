package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the ranking batch
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// External data sources
	Naver NaverConfig

	// Pipeline
	Pipeline PipelineConfig

	// Output files
	Output OutputConfig

	// Blog publishing
	Blogger BloggerConfig

	// Dashboard
	DashboardPort string

	// Scheduler (cron with seconds, KST)
	ScheduleCron string

	// Logging
	LogLevel  string
	LogFormat string
}

// NaverConfig holds Naver Finance endpoints
type NaverConfig struct {
	BaseURL   string  // ETF 목록 API
	ChartURL  string  // 일봉 차트 API
	RateLimit float64 // 초당 요청 수 (0 = 무제한)
}

// PipelineConfig holds relative strength pipeline parameters
type PipelineConfig struct {
	BenchmarkCode string        // 벤치마크 (KODEX 200)
	BatchSize     int           // N건마다 휴식
	BatchPause    time.Duration // 휴식 시간
	Workers       int           // 동시 수집 수 (1 = 순차)
}

// OutputConfig holds output file paths
type OutputConfig struct {
	CSVPath  string
	HTMLPath string
}

// BloggerConfig holds Blogger API credentials
// 4개 값이 모두 있어야 포스팅, 하나라도 없으면 건너뜀
type BloggerConfig struct {
	BlogID       string
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string // OAuth2 토큰 엔드포인트
	APIURL       string // Blogger v3 API
}

// Enabled reports whether every Blogger credential is present
func (b BloggerConfig) Enabled() bool {
	return b.BlogID != "" && b.ClientID != "" && b.ClientSecret != "" && b.RefreshToken != ""
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Naver: NaverConfig{
			BaseURL:   getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			ChartURL:  getEnv("NAVER_CHART_URL", "https://fchart.stock.naver.com"),
			RateLimit: getEnvAsFloat("NAVER_RATE_LIMIT", 20),
		},

		Pipeline: PipelineConfig{
			BenchmarkCode: getEnv("BENCHMARK_CODE", "069500"),
			BatchSize:     getEnvAsInt("FETCH_BATCH_SIZE", 50),
			BatchPause:    getEnvAsDuration("FETCH_BATCH_PAUSE", "500ms"),
			Workers:       getEnvAsInt("FETCH_WORKERS", 1),
		},

		Output: OutputConfig{
			CSVPath:  getEnv("OUTPUT_CSV", "etf_data.csv"),
			HTMLPath: getEnv("OUTPUT_HTML", "minervini_rs_etf_list.html"),
		},

		Blogger: BloggerConfig{
			BlogID:       getEnv("BLOGGER_BLOG_ID", ""),
			ClientID:     getEnv("BLOGGER_CLIENT_ID", ""),
			ClientSecret: getEnv("BLOGGER_CLIENT_SECRET", ""),
			RefreshToken: getEnv("BLOGGER_REFRESH_TOKEN", ""),
			TokenURL:     getEnv("BLOGGER_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			APIURL:       getEnv("BLOGGER_API_URL", "https://www.googleapis.com/blogger/v3"),
		},

		DashboardPort: getEnv("DASHBOARD_PORT", "8501"),
		ScheduleCron:  getEnv("SCHEDULE_CRON", "0 30 16 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pipeline.BenchmarkCode == "" {
		return fmt.Errorf("BENCHMARK_CODE is required")
	}

	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("FETCH_BATCH_SIZE must be positive, got %d", c.Pipeline.BatchSize)
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive, got %d", c.Pipeline.Workers)
	}

	if c.Output.CSVPath == "" {
		return fmt.Errorf("OUTPUT_CSV is required")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
