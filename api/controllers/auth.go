package controllers

import (
	"net/http"

	"github.com/tillpoint/pos-backend/api/responses"
	"github.com/tillpoint/pos-backend/api/validators"
	"github.com/tillpoint/pos-backend/internal/auth"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
	"github.com/tillpoint/pos-backend/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token       string `json:"token"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, user, err := svc.Login(r.Context(), payload.Username, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			Token:       token,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Role:        string(user.Role),
		})
	}
}
