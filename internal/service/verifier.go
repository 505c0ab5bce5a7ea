package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"account-auth-service/internal/core/password"
	"account-auth-service/internal/domain"
)

type Verdict int

const (
	Rejected Verdict = iota
	Verified
)

func (v Verdict) String() string {
	if v == Verified {
		return "verified"
	}
	return "rejected"
}

// Result 只有 Verified 时才带 Account
type Result struct {
	Verdict Verdict
	Account *domain.Account
}

// Verifier 登录校验。账号不存在、已停用、密码错误三种情况对外完全一致，
// 不存在时也会对 decoy 哈希跑一次 bcrypt，耗时与密码错误相同
type Verifier struct {
	store  domain.AccountStore
	hasher password.Hasher
	log    *zap.Logger
}

func NewVerifier(store domain.AccountStore, hasher password.Hasher, l *zap.Logger) *Verifier {
	return &Verifier{store: store, hasher: hasher, log: l}
}

func (v *Verifier) Authenticate(ctx context.Context, req LoginRequest) (Result, error) {
	req = req.normalized()
	if req.Identifier == "" || req.Password == "" {
		v.hasher.Verify(req.Password, v.hasher.Decoy())
		return v.reject(req.Identifier), nil
	}

	acc, err := v.store.FindByIdentifier(ctx, req.Identifier)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		v.hasher.Verify(req.Password, v.hasher.Decoy())
		return v.reject(req.Identifier), nil
	case err != nil:
		authAttempts.WithLabelValues(resultError).Inc()
		v.log.Error("login lookup failed", zap.String("identifier", req.Identifier), zap.Error(err))
		return Result{}, err
	}

	// 先比对哈希再看 is_active，停用账号和正常账号走同样的耗时
	match := v.hasher.Verify(req.Password, acc.PasswordHash)
	if !match || !acc.IsActive {
		return v.reject(req.Identifier), nil
	}

	authAttempts.WithLabelValues(Verified.String()).Inc()
	v.log.Info("login verified", zap.String("identifier", acc.Identifier))
	return Result{Verdict: Verified, Account: &acc}, nil
}

func (v *Verifier) reject(identifier string) Result {
	authAttempts.WithLabelValues(Rejected.String()).Inc()
	v.log.Info("login rejected", zap.String("identifier", identifier))
	return Result{Verdict: Rejected}
}
