package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// LoadFile 读取配置文件（yaml、json、toml 等 viper 支持的格式）
// 键名转换为环境变量名，例如 fireblocks.vault 对应 FIREBLOCKS_VAULT，环境中已有的值优先
func LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	applied := 0
	for _, key := range v.AllKeys() {
		env := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(env); ok {
			continue
		}
		if err := os.Setenv(env, v.GetString(key)); err != nil {
			return errors.Wrapf(err, "failed to set %s", env)
		}
		applied++
	}

	log.Debug().Str("path", path).Int("applied", applied).Msg("Loaded config file")

	return nil
}
