package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type BackupS3 struct {
	Region     string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Instagram struct {
	AccountID   string
	AccessToken string
	GraphAPIURL string
}

type Email struct {
	APIKey      string
	APIURL      string
	FromAddress string
	ApproverTo  string
}

type Canvas struct {
	Width         int
	Height        int
	ContentHeight int
	SafetyMargin  int
}

type Config struct {
	PostgresURI     string
	RedisURI        string
	GeminiAPIKey    string
	PublicBaseURL   string
	RenderOutputDir string
	MaxRetries      int
	R2              R2
	Backup          BackupS3
	Instagram       Instagram
	Email           Email
	Canvas          Canvas
	SecretKey       string
	CookieName      string
	AdminAPIKey     string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		RedisURI:        getEnv("REDIS_URI", "127.0.0.1:6379"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		RenderOutputDir: getEnv("RENDER_OUTPUT_DIR", "./renders"),
		MaxRetries:      getEnvInt("POST_MAX_RETRIES", 3),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Backup: BackupS3{
			Region:     getEnv("BACKUP_S3_REGION", ""),
			AccessKey:  getEnv("BACKUP_S3_ACCESS_KEY", ""),
			SecretKey:  getEnv("BACKUP_S3_SECRET_KEY", ""),
			BucketName: getEnv("BACKUP_S3_BUCKET_NAME", ""),
			PublicURL:  getEnv("BACKUP_S3_PUBLIC_URL", ""),
		},
		Instagram: Instagram{
			AccountID:   getEnv("INSTAGRAM_ACCOUNT_ID", ""),
			AccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
			GraphAPIURL: getEnv("INSTAGRAM_GRAPH_API_URL", "https://graph.instagram.com/v21.0"),
		},
		Email: Email{
			APIKey:      getEnv("RESEND_API_KEY", ""),
			APIURL:      getEnv("RESEND_API_URL", "https://api.resend.com"),
			FromAddress: getEnv("EMAIL_FROM", "PostPilot <noreply@postpilot.dev>"),
			ApproverTo:  getEnv("EMAIL_APPROVER", ""),
		},
		Canvas: Canvas{
			Width:         getEnvInt("CANVAS_WIDTH", 1080),
			Height:        getEnvInt("CANVAS_HEIGHT", 1350),
			ContentHeight: getEnvInt("CANVAS_CONTENT_HEIGHT", 1100),
			SafetyMargin:  getEnvInt("CANVAS_SAFETY_MARGIN", 40),
		},
		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "postpilot_session"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
