package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// bcrypt 只看前 72 字节，超出部分直接拒绝
const maxBcryptBytes = 72

var ErrWeak = errors.New("password does not satisfy policy")

// Policy 零值表示不做复杂度限制，只保留 bcrypt 的长度上限
type Policy struct {
	MinLength     int
	MaxLength     int // 字节数，0 表示 72
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

func (p Policy) normalized() (Policy, error) {
	if p.MaxLength == 0 {
		p.MaxLength = maxBcryptBytes
	}
	switch {
	case p.MinLength < 0:
		return p, fmt.Errorf("password min length %d is negative", p.MinLength)
	case p.MaxLength < 0 || p.MaxLength > maxBcryptBytes:
		return p, fmt.Errorf("password max length %d out of range [1,%d]", p.MaxLength, maxBcryptBytes)
	case p.MinLength > p.MaxLength:
		return p, fmt.Errorf("password min length %d exceeds max length %d", p.MinLength, p.MaxLength)
	}
	return p, nil
}

func (p Policy) Validate(pw string) error {
	if n := utf8.RuneCountInString(pw); n < p.MinLength {
		return errors.Wrapf(ErrWeak, "must be at least %d characters long", p.MinLength)
	}
	if limit := p.MaxLength; limit > 0 && len(pw) > limit {
		return errors.Wrapf(ErrWeak, "must be at most %d bytes long", limit)
	}

	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	switch {
	case p.RequireUpper && !upper:
		return errors.Wrap(ErrWeak, "must contain at least one uppercase letter")
	case p.RequireLower && !lower:
		return errors.Wrap(ErrWeak, "must contain at least one lowercase letter")
	case p.RequireDigit && !digit:
		return errors.Wrap(ErrWeak, "must contain at least one number")
	case p.RequireSymbol && !symbol:
		return errors.Wrap(ErrWeak, "must contain at least one special character")
	}
	return nil
}
