package http

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/common/errors"
	"marketplace-backend/internal/common/middleware"
	"marketplace-backend/internal/features/account/models"
	"marketplace-backend/internal/features/account/service"
)

type AccountHandler struct {
	service service.AccountService
}

func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/user/signup", h.signup)
	router.POST("/user/login", h.login)
}

// @Summary Register a new account
// @Accept mpfd
// @Produce json
// @Success 201 {object} models.AuthResponse
// @Router /user/signup [post]
func (h *AccountHandler) signup(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		middleware.RespondError(c, errors.NewValidationError("invalid multipart form"))
		return
	}

	input := &service.SignupInput{
		Email:      formValue(form, "email"),
		Username:   formValue(form, "username"),
		Password:   formValue(form, "password"),
		Newsletter: formValue(form, "newsletter") == "true",
	}

	if files := form.File["avatar"]; len(files) > 0 {
		data, err := readFile(files[0])
		if err != nil {
			middleware.RespondError(c, errors.NewValidationError("could not read avatar file"))
			return
		}
		input.Avatar = data
	}

	account, err := h.service.Signup(c.Request.Context(), input)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		ID:      account.ID,
		Token:   account.Token,
		Account: account.Public(),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Log in with email and password
// @Accept json
// @Produce json
// @Success 200 {object} models.AuthResponse
// @Router /user/login [post]
func (h *AccountHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, errors.NewValidationError("email and password are required"))
		return
	}

	account, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		ID:      account.ID,
		Token:   account.Token,
		Account: account.Public(),
	})
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
