package config

import (
	"os"
	"strings"
	"time"

	"github.com/SafeMPC/custody-signer/internal/custody"
	"github.com/SafeMPC/custody-signer/internal/util"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

// 环境变量名
const (
	EnvVault          = "FIREBLOCKS_VAULT"
	EnvSecret         = "FIREBLOCKS_SECRET"
	EnvAPIKey         = "FIREBLOCKS_API_KEY"
	EnvEndpoint       = "FIREBLOCKS_ENDPOINT"
	EnvPubkey         = "FIREBLOCKS_PUBKEY"
	EnvTestnet        = "FIREBLOCKS_TESTNET"
	EnvDevnet         = "FIREBLOCKS_DEVNET"
	EnvPollTimeout    = "FIREBLOCKS_POLL_TIMEOUT"
	EnvPollInterval   = "FIREBLOCKS_POLL_INTERVAL"
	EnvExternalTxID   = "FIREBLOCKS_EXTERNAL_TX_ID"
	EnvRequestTimeout = "FIREBLOCKS_REQUEST_TIMEOUT"
	EnvRPCURL         = "RPC_URL"
)

const (
	DefaultPollTimeout = 60 * time.Second
	DefaultRPCURL      = "https://api.devnet.solana.com"
	pemHeader          = "-----BEGIN"
)

// ErrMissingEnv 缺少必需的环境变量
var ErrMissingEnv = errors.New("missing required environment variable")

// Signer 托管签名器配置
type Signer struct {
	Vault          string
	APIKey         string
	Secret         []byte
	Endpoint       string
	PublicKey      string
	Asset          custody.Asset
	PollTimeout    time.Duration
	PollInterval   time.Duration
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	ExternalTxIDs  bool
	RPCURL         string
}

// SignerFromEnv 从环境变量读取配置
// 设置了 FIREBLOCKS_TESTNET 或 FIREBLOCKS_DEVNET（任意值）时使用测试网资产
func SignerFromEnv() (Signer, error) {
	cfg := Signer{
		PublicKey:      util.GetEnv(EnvPubkey, ""),
		Asset:          custody.AssetSOL,
		PollTimeout:    util.GetEnvAsDuration(EnvPollTimeout, DefaultPollTimeout),
		PollInterval:   util.GetEnvAsDuration(EnvPollInterval, custody.DefaultPollInterval),
		RequestTimeout: util.GetEnvAsDuration(EnvRequestTimeout, custody.DefaultTimeout),
		ConnectTimeout: custody.DefaultConnectTimeout,
		ExternalTxIDs:  util.GetEnvAsBool(EnvExternalTxID, false),
		RPCURL:         util.GetEnv(EnvRPCURL, DefaultRPCURL),
	}

	if _, ok := os.LookupEnv(EnvTestnet); ok {
		cfg.Asset = custody.AssetSOLTest
	}
	if _, ok := os.LookupEnv(EnvDevnet); ok {
		cfg.Asset = custody.AssetSOLTest
	}

	var err error
	if cfg.Vault, err = required(EnvVault); err != nil {
		return Signer{}, err
	}
	if cfg.APIKey, err = required(EnvAPIKey); err != nil {
		return Signer{}, err
	}
	if cfg.Endpoint, err = required(EnvEndpoint); err != nil {
		return Signer{}, err
	}

	secret, err := requiredRaw(EnvSecret)
	if err != nil {
		return Signer{}, err
	}
	if cfg.Secret, err = LoadSecret(secret); err != nil {
		return Signer{}, err
	}

	return cfg, nil
}

// LoadSecret 接受 PEM 内容或 PEM 文件路径
func LoadSecret(value string) ([]byte, error) {
	if strings.Contains(value, pemHeader) {
		// .env 中的多行值常以字面量 \n 保存
		return []byte(strings.ReplaceAll(value, `\n`, "\n")), nil
	}

	raw, err := os.ReadFile(strings.TrimSpace(value))
	if err != nil {
		return nil, errors.Wrapf(err, "%s is neither a PEM key nor a readable file", EnvSecret)
	}

	return raw, nil
}

// LoadDotEnv 非 CI 环境下加载 .env，文件不存在不是错误
// 已存在的环境变量不会被覆盖
func LoadDotEnv(paths ...string) error {
	if _, ci := os.LookupEnv("CI"); ci {
		return nil
	}

	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			log.Debug().Str("path", p).Msg("No .env file")
			continue
		}
		if err := gotenv.Load(p); err != nil {
			return errors.Wrapf(err, "failed to load %s", p)
		}
	}

	return nil
}

// PollConfig 根据配置生成轮询参数
func (s Signer) PollConfig() custody.PollConfig {
	cfg := custody.DefaultPollConfig()
	cfg.Timeout = s.PollTimeout
	cfg.Interval = s.PollInterval
	return cfg
}

// requiredRaw 保留原值，PEM 结尾的换行属于密钥内容
func requiredRaw(key string) (string, error) {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return "", errors.Wrap(ErrMissingEnv, key)
	}
	return val, nil
}

func required(key string) (string, error) {
	val, ok := util.MustGetEnv(key)
	if !ok {
		return "", errors.Wrap(ErrMissingEnv, key)
	}
	return val, nil
}
