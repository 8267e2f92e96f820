package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sign-identity/identity-api/internal/api/middleware"
	"github.com/sign-identity/identity-api/internal/core/domain"
	"github.com/sign-identity/identity-api/internal/core/ports"
)

// AuthHandler handles HTTP requests for account operations.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account and assigns the requested roles.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Router       /Auth/Register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Password:  req.Password,
		Roles:     req.Roles,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) || errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}

	return c.JSON(http.StatusOK, registerResponse{
		Account:     toAccountResponse(result.Account),
		FailedRoles: result.FailedRoles,
	})
}

// Login authenticates an account and returns the bearer token both in the
// response body and as the accessToken cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /Auth/Login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// A soft-deleted or unknown account answers the same as a wrong
		// password so the endpoint does not confirm account existence.
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrAccountNotFound) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Account:   toAccountResponse(result.Account),
	})
}

// Logout revokes the current token and clears the accessToken cookie.
// Safe to call repeatedly.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Router       /Auth/Logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	accountID, _ := c.Get("account_id").(string)
	tokenID, _ := c.Get("token_id").(string)
	expiry, _ := c.Get("token_expiry").(time.Time)

	if err := h.authService.Logout(c.Request().Context(), accountID, tokenID, expiry); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// GetAll lists every non-deleted account.
//
// @Summary      List accounts
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /Auth [get]
func (h *AuthHandler) GetAll(c echo.Context) error {
	accounts, err := h.authService.GetAllUsers(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountResponse(&accounts[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID returns a single non-deleted account.
//
// @Summary      Get an account by id
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      404  {object}  errorResponse
// @Router       /Auth/{id} [get]
func (h *AuthHandler) GetByID(c echo.Context) error {
	account, err := h.authService.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "account not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Delete soft-deletes an account. The record stays in storage for audit but
// disappears from every read.
//
// @Summary      Soft-delete an account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      404  {object}  errorResponse
// @Router       /Auth/{id} [delete]
func (h *AuthHandler) Delete(c echo.Context) error {
	actorID, _ := c.Get("account_id").(string)

	updated, err := h.authService.SoftDeleteAccount(c.Request().Context(), actorID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "account not found"})
		}
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}

// Update overwrites the three mutable profile fields.
//
// @Summary      Update an account's profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true   "Account id"
// @Param        body  body      updateAccountRequest  true   "Profile fields"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /Auth/{id} [put]
func (h *AuthHandler) Update(c echo.Context) error {
	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	actorID, _ := c.Get("account_id").(string)

	updated, err := h.authService.UpdateAccount(c.Request().Context(), actorID, ports.UpdateAccountInput{
		ID:        c.Param("id"),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "account not found"})
		}
		if errors.Is(err, domain.ErrValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}
