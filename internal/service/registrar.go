package service

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"account-auth-service/internal/core/password"
	"account-auth-service/internal/domain"
)

// Registrar 负责注册：校验 -> 哈希 -> 落库
type Registrar struct {
	store  domain.AccountStore
	hasher password.Hasher
	log    *zap.Logger
}

func NewRegistrar(store domain.AccountStore, hasher password.Hasher, l *zap.Logger) *Registrar {
	return &Registrar{store: store, hasher: hasher, log: l}
}

func (r *Registrar) Register(ctx context.Context, req RegisterRequest) (domain.Account, error) {
	req = req.normalized()
	if err := validateStruct(req); err != nil {
		registrations.WithLabelValues(resultInvalid).Inc()
		return domain.Account{}, err
	}

	hash, err := r.hasher.Hash(req.Password)
	if errors.Is(err, password.ErrWeak) {
		registrations.WithLabelValues(resultInvalid).Inc()
		return domain.Account{}, pkgerrors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	if err != nil {
		registrations.WithLabelValues(resultError).Inc()
		return domain.Account{}, pkgerrors.Wrap(err, "hash password")
	}

	acc, err := r.store.Insert(ctx, domain.Account{
		Identifier:   req.Identifier,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	})
	switch {
	case errors.Is(err, domain.ErrDuplicateIdentifier):
		registrations.WithLabelValues(resultDuplicate).Inc()
		r.log.Info("signup rejected: identifier taken", zap.String("identifier", req.Identifier))
		return domain.Account{}, err
	case err != nil:
		registrations.WithLabelValues(resultError).Inc()
		r.log.Error("signup failed", zap.String("identifier", req.Identifier), zap.Error(err))
		return domain.Account{}, err
	}

	registrations.WithLabelValues(resultCreated).Inc()
	r.log.Info("account created", zap.String("identifier", acc.Identifier), zap.String("role", acc.Role))
	return acc, nil
}
