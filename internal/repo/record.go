package repo

import (
	"time"

	"account-auth-service/internal/domain"
)

// accountRecord 是写入 redis（存储和缓存）的 JSON 形态；domain.Account 的 json 标签会隐藏哈希，不能直接用
type accountRecord struct {
	Identifier   string    `json:"identifier"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newRecord(a domain.Account) accountRecord {
	return accountRecord{
		Identifier:   a.Identifier,
		Email:        a.Email,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r accountRecord) toDomain() domain.Account {
	return domain.Account{
		Identifier:   r.Identifier,
		Email:        r.Email,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
