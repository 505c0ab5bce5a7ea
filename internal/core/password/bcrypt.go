package password

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher 单向哈希 + 常量时间校验
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	// Decoy 返回一个与真实哈希同成本的哈希，用于账号不存在时照常跑一次校验
	Decoy() string
}

// Config 构造后不可变；cost 为 0 时取 bcrypt.DefaultCost
type Config struct {
	Cost   int
	Policy Policy
}

type Bcrypt struct {
	cost   int
	policy Policy
	decoy  string
}

var _ Hasher = (*Bcrypt)(nil)

func NewBcrypt(cfg Config) (*Bcrypt, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	policy, err := cfg.Policy.normalized()
	if err != nil {
		return nil, err
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("decoy seed: %w", err)
	}
	decoy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, fmt.Errorf("decoy hash: %w", err)
	}
	return &Bcrypt{cost: cost, policy: policy, decoy: string(decoy)}, nil
}

func (b *Bcrypt) Cost() int { return b.cost }

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if err := b.policy.Validate(plaintext); err != nil {
		return "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrWeak, maxBcryptBytes)
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify 超过 72 字节的输入不可能是注册时的密码（bcrypt 只看前 72 字节），
// 照常对 decoy 跑一次比对后直接判失败
func (b *Bcrypt) Verify(plaintext, hash string) bool {
	if len(plaintext) > maxBcryptBytes {
		_ = bcrypt.CompareHashAndPassword([]byte(b.decoy), []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (b *Bcrypt) Decoy() string { return b.decoy }
