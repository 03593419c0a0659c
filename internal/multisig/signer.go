// Package multisig 协调多个签名方完成一笔需要多个签名的交易
package multisig

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Role 签名方类型
type Role int

const (
	// RoleRemoteCustodial 远程托管签名
	RoleRemoteCustodial Role = iota
	// RoleLocalKeypair 本地私钥
	RoleLocalKeypair
	// RolePresigned 预先计算好的签名
	RolePresigned
	// RoleNull 占位签名方，只贡献零签名
	RoleNull
)

func (r Role) String() string {
	switch r {
	case RoleRemoteCustodial:
		return "remote_custodial"
	case RoleLocalKeypair:
		return "local_keypair"
	case RolePresigned:
		return "presigned"
	case RoleNull:
		return "null"
	default:
		return "unknown"
	}
}

// Signer 能对任意字节签名并知道自身公钥的签名方
// 签名方之间以公钥区分身份
type Signer interface {
	PublicKey() solana.PublicKey
	Role() Role
	SignMessage(ctx context.Context, message []byte) (solana.Signature, error)
}

// TransactionSigner 需要看到完整（已部分签名）交易的签名方，例如远程托管服务
type TransactionSigner interface {
	Signer
	SignTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Keypair 本地私钥签名方
type Keypair struct {
	key solana.PrivateKey
}

// NewKeypair 创建本地私钥签名方
func NewKeypair(key solana.PrivateKey) *Keypair {
	return &Keypair{key: key}
}

func (k *Keypair) PublicKey() solana.PublicKey {
	return k.key.PublicKey()
}

func (k *Keypair) Role() Role {
	return RoleLocalKeypair
}

func (k *Keypair) SignMessage(_ context.Context, message []byte) (solana.Signature, error) {
	return k.key.Sign(message)
}

// Presigned 注入预先计算好的签名，例如离线签名方提供的结果
type Presigned struct {
	key solana.PublicKey
	sig solana.Signature
}

// NewPresigned 创建预签名签名方
func NewPresigned(key solana.PublicKey, sig solana.Signature) *Presigned {
	return &Presigned{key: key, sig: sig}
}

func (p *Presigned) PublicKey() solana.PublicKey {
	return p.key
}

func (p *Presigned) Role() Role {
	return RolePresigned
}

func (p *Presigned) SignMessage(context.Context, []byte) (solana.Signature, error) {
	return p.sig, nil
}

// Null 占位签名方，签名槽位保持为零，由后续流程补齐
type Null struct {
	key solana.PublicKey
}

// NewNull 创建占位签名方
func NewNull(key solana.PublicKey) *Null {
	return &Null{key: key}
}

func (n *Null) PublicKey() solana.PublicKey {
	return n.key
}

func (n *Null) Role() Role {
	return RoleNull
}

func (n *Null) SignMessage(context.Context, []byte) (solana.Signature, error) {
	return solana.Signature{}, nil
}
