package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"account-auth-service/internal/domain"
)

// RegisterRequest 注册入参；密码不做 trim
type RegisterRequest struct {
	Identifier string `validate:"required,max=64"`
	Email      string `validate:"required,email,max=255"`
	FirstName  string `validate:"required,max=64"`
	LastName   string `validate:"required,max=64"`
	Password   string `validate:"required"`
	Role       string `validate:"required,max=32"`
}

func (r RegisterRequest) normalized() RegisterRequest {
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Role = strings.TrimSpace(r.Role)
	return r
}

type LoginRequest struct {
	Identifier string
	Password   string
}

// normalized 标识符与注册时同样 trim；密码原样
func (r LoginRequest) normalized() LoginRequest {
	r.Identifier = strings.TrimSpace(r.Identifier)
	return r
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct 把 validator 的报错收敛成 ErrInvalidInput，并列出出错字段
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	sort.Strings(fields)
	return pkgerrors.Wrapf(domain.ErrInvalidInput, "invalid fields: %s", strings.Join(fields, ", "))
}
