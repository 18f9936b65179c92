package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/tasknest/internal/api/dto"
	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/auth"
	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/utils"
	"github.com/pratik-mahalle/tasknest/internal/pkg/validator"
)

// AccountHandler handles account signup and token refresh
type AccountHandler struct {
	accounts  account.Service
	auth      config.AuthConfig
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts account.Service, authCfg config.AuthConfig, log *logger.Logger, val *validator.Validator) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		auth:      authCfg,
		logger:    log,
		validator: val,
	}
}

func (h *AccountHandler) mint(accountID string) (dto.TokenResponse, error) {
	pair, err := auth.MintTokens(accountID, h.auth.JWTSecret, h.auth.AccessTokenExpiry, h.auth.RefreshTokenExpiry)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	return dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Create creates a free-tier account
// @Summary Create account
// @Description Create a free-tier account and return its tokens
// @Tags Accounts
// @Produce json
// @Success 201 {object} dto.AccountCreatedResponse "Account created"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /api/v1/accounts [post]
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Create(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	tokens, err := h.mint(a.ID)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate tokens")
		utils.WriteError(w, errors.Internal("Failed to generate tokens", err))
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.AccountCreatedResponse{
		Account: dto.ToAccountDTO(a),
		Tokens:  tokens,
	})
}

// Me returns the authenticated account as stored
// @Summary Current account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AccountDTO
// @Failure 404 {object} utils.ErrorResponse "Account not found"
// @Router /api/v1/accounts/me [get]
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	a, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToAccountDTO(a))
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	pair, err := auth.Refresh(req.RefreshToken, h.auth.JWTSecret, h.auth.AccessTokenExpiry, h.auth.RefreshTokenExpiry)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid or expired refresh token"))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
