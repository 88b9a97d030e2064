package configs

import "github.com/ZhaoZeLuWei/HelpMe/configs/constants"

type AppConfig struct {
	Port              string
	GinMode           string
	CORSOrigins       []string
	VerifyCode        string
	LogLevel          string
	LogFormat         string
	SeedAdminPassword string
	SeedDemoData      bool
}

func GetAppConfig() *AppConfig {
	return &AppConfig{
		Port:              GetEnv("PORT", "3000"),
		GinMode:           GetEnv("GIN_MODE", "debug"),
		CORSOrigins:       GetEnvList("CORS_ORIGINS", []string{"http://localhost:8100", "http://localhost:4200"}),
		VerifyCode:        GetEnv("VERIFY_CODE", "1234"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		LogFormat:         GetEnv("LOG_FORMAT", "json"),
		SeedAdminPassword: GetEnv("SEED_ADMIN_PASSWORD", "@admin123"),
		SeedDemoData:      GetEnvBool("SEED_DEMO_DATA", false),
	}
}

type UploadConfig struct {
	Dir          string
	PublicPrefix string
	MaxFileSize  int64
}

func GetUploadConfig() *UploadConfig {
	return &UploadConfig{
		Dir:          GetEnv("UPLOAD_DIR", "upload/img"),
		PublicPrefix: "/img",
		MaxFileSize:  GetEnvInt64("UPLOAD_MAX_FILE_SIZE", constants.MaxImageSizeMB*1024*1024),
	}
}
