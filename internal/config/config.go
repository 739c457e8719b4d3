package config

import "strings"

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// NormalizeEnv приводит значение APP_ENV к одному из известных окружений.
// Пустое или неизвестное значение считается локальным.
func NormalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvProd, "production":
		return EnvProd
	case EnvDev, "development":
		return EnvDev
	default:
		return EnvLocal
	}
}
