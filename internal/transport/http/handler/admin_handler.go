package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"account-auth-service/internal/domain"
	"account-auth-service/internal/transport/http/ez"
)

type AccountAdmin interface {
	List(ctx context.Context, offset, limit int) ([]domain.Account, int64, error)
	SetActive(ctx context.Context, identifier string, active bool) error
}

type AdminHandler struct {
	admin AccountAdmin
}

func NewAdminHandler(admin AccountAdmin) *AdminHandler { return &AdminHandler{admin: admin} }

type listQ struct {
	Offset int `form:"offset,default=0" binding:"min=0"`
	Limit  int `form:"limit,default=20" binding:"min=0"`
}

type listOut struct {
	Total int64         `json:"total"`
	Items []AccountView `json:"items"`
}

type statusOut struct {
	Identifier string `json:"identifier"`
	IsActive   bool   `json:"is_active"`
}

func (h *AdminHandler) Mount(g *gin.RouterGroup) {
	ez.Register(g, ez.Action[listQ, listOut]{
		Method:  http.MethodGet,
		Path:    "/accounts",
		Binder:  ez.BindQuery,
		Handler: h.list,
	})
	ez.Register(g, ez.Action[struct{}, statusOut]{
		Method:  http.MethodPost,
		Path:    "/accounts/:identifier/deactivate",
		Binder:  ez.BindNone,
		Handler: h.setActive(false),
	})
	ez.Register(g, ez.Action[struct{}, statusOut]{
		Method:  http.MethodPost,
		Path:    "/accounts/:identifier/activate",
		Binder:  ez.BindNone,
		Handler: h.setActive(true),
	})
}

func (h *AdminHandler) list(c *gin.Context, in *listQ) (listOut, error) {
	accs, total, err := h.admin.List(c.Request.Context(), in.Offset, in.Limit)
	if err != nil {
		return listOut{}, err
	}
	out := listOut{Total: total, Items: make([]AccountView, 0, len(accs))}
	for _, a := range accs {
		out.Items = append(out.Items, ToView(a))
	}
	return out, nil
}

func (h *AdminHandler) setActive(active bool) func(*gin.Context, *struct{}) (statusOut, error) {
	return func(c *gin.Context, _ *struct{}) (statusOut, error) {
		id := c.Param("identifier")
		if id == "" {
			return statusOut{}, ez.BadRequest("missing identifier")
		}
		if err := h.admin.SetActive(c.Request.Context(), id, active); err != nil {
			return statusOut{}, err
		}
		return statusOut{Identifier: id, IsActive: active}, nil
	}
}
