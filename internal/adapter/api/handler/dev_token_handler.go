package handler

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/domain/repository"
	"skipfurther/internal/usecase"
	"skipfurther/pkg/errors"
	"skipfurther/pkg/response"
)

type DevTokenHandler struct {
	issuer      usecase.DevTokenIssuer
	profileRepo repository.ProfileRepository
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(issuer usecase.DevTokenIssuer, profileRepo repository.ProfileRepository) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:      issuer,
		profileRepo: profileRepo,
	}
}

func SetupDevTokenHandler(issuer usecase.DevTokenIssuer, profileRepo repository.ProfileRepository) {
	devTokenHandler = NewDevTokenHandler(issuer, profileRepo)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

// GenerateToken issues a token for ?uid= so local clients can act as any existing user.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		return response.Error(c, errors.BadRequest("uid is required", nil))
	}

	profile, err := h.profileRepo.GetByID(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.issuer.IssueDevToken(c.Request().Context(), profile.ID)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to issue token", err))
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user":  profile.Public(),
	})
}
