package account

import (
	"time"

	"account-auth-service/internal/domain"
)

type AccountModel struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Identifier   string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"size:255;not null"`
	FirstName    string `gorm:"size:64;not null"`
	LastName     string `gorm:"size:64;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:32;not null"`
	IsActive     bool   `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (AccountModel) TableName() string { return "accounts" }

func FromDomain(a domain.Account) AccountModel {
	return AccountModel{
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

func (m AccountModel) ToDomain() domain.Account {
	return domain.Account{
		Identifier:   m.Identifier,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
