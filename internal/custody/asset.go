package custody

import (
	"strings"

	"github.com/pkg/errors"
)

// Asset 托管服务中的资产标识
type Asset string

const (
	// AssetSOL 主网 SOL
	AssetSOL Asset = "SOL"
	// AssetSOLTest 测试网/开发网 SOL
	AssetSOLTest Asset = "SOL_TEST"
)

// ErrUnknownAsset 不支持的资产标识
var ErrUnknownAsset = errors.New("unknown asset")

// DefaultAsset 未指定时使用测试网资产
const DefaultAsset = AssetSOLTest

// ParseAsset 解析资产标识（大小写不敏感）
func ParseAsset(s string) (Asset, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(AssetSOL):
		return AssetSOL, nil
	case string(AssetSOLTest):
		return AssetSOLTest, nil
	default:
		return "", errors.Wrapf(ErrUnknownAsset, "%q", s)
	}
}

// AssetForNetwork 根据是否主网选择资产
func AssetForNetwork(mainnet bool) Asset {
	if mainnet {
		return AssetSOL
	}
	return AssetSOLTest
}

// IsMainnet 是否为主网资产
func (a Asset) IsMainnet() bool {
	return a == AssetSOL
}

func (a Asset) String() string {
	return string(a)
}
