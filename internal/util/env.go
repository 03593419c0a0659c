package util

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv 读取环境变量，不存在时返回默认值
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

// MustGetEnv 读取环境变量，不存在或为空时返回 false
func MustGetEnv(key string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	return val, val != ""
}

// GetEnvAsBool 读取布尔环境变量
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsDuration 读取时长环境变量
// 纯数字按秒解析（例如 "60"），否则按 time.ParseDuration 解析（例如 "1m30s"）
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	strVal := strings.TrimSpace(GetEnv(key, ""))
	if strVal == "" {
		return defaultVal
	}

	if secs, err := strconv.ParseUint(strVal, 10, 32); err == nil {
		return time.Duration(secs) * time.Second
	}

	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}

	return defaultVal
}
