package handler

import (
	"github.com/labstack/echo/v4"

	"skipfurther/internal/usecase"
	"skipfurther/pkg/response"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type updateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=30"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func (h *ProfileHandler) GetMe(c echo.Context) error {
	profile, err := h.profileUseCase.GetProfile(c.Request().Context(), currentUser(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profileUseCase.UpdateProfile(c.Request().Context(), currentUser(c), usecase.UpdateProfileInput{
		Username:  req.Username,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) GetPublic(c echo.Context) error {
	profile, err := h.profileUseCase.GetPublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

// SubmitVerification takes a multipart identity document and its type.
func (h *ProfileHandler) SubmitVerification(c echo.Context) error {
	doc, err := formFile(c, "document", true)
	if err != nil {
		return response.Error(c, err)
	}
	defer doc.close()

	documentType := c.FormValue("documentType")
	if documentType == "" {
		documentType = "identity"
	}

	request, err := h.profileUseCase.SubmitVerification(c.Request().Context(), currentUser(c), doc.reader(), doc.contentType, documentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, request)
}
