package configs

import (
	"time"
)

type TokenJWT struct {
	JWT                 string
	ExpireDuration      time.Duration
	AdminExpireDuration time.Duration
	GracePeriod         time.Duration
}

func GetTokenJWTConfig() *TokenJWT {
	return &TokenJWT{
		JWT:                 GetEnv("JWT_SECRET", "dev_secret_change_me"),
		ExpireDuration:      GetEnvDuration("JWT_EXPIRE_DURATION", 7*24*time.Hour),
		AdminExpireDuration: GetEnvDuration("JWT_ADMIN_EXPIRE_DURATION", 12*time.Hour),
		GracePeriod:         GetEnvDuration("JWT_GRACE_PERIOD", 24*time.Hour),
	}
}
