package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-authgate/devicelink/internal/core"
	"github.com/go-authgate/devicelink/internal/rpcerr"
	"github.com/go-authgate/devicelink/internal/services"
	"github.com/go-authgate/devicelink/internal/store"
	"github.com/go-authgate/devicelink/internal/token"

	"github.com/gin-gonic/gin"
)

// SessionHandler authenticates devices and issues session tokens.
type SessionHandler struct {
	directory core.AccountDirectory
	refresher *services.TokenRefresher
	tokens    *token.LocalTokenProvider
}

func NewSessionHandler(
	directory core.AccountDirectory,
	refresher *services.TokenRefresher,
	tokens *token.LocalTokenProvider,
) *SessionHandler {
	return &SessionHandler{directory: directory, refresher: refresher, tokens: tokens}
}

type authenticateDeviceRequest struct {
	DeviceCredential string `json:"device_credential"`
	Create           bool   `json:"create"`
}

// AuthenticateDevice handles POST /v1/auth/device
// The provider token of a linked account is refreshed before the session is
// issued.
func (h *SessionHandler) AuthenticateDevice(c *gin.Context) {
	var req authenticateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errCorruptPayload)
		return
	}
	if req.DeviceCredential == "" {
		respondError(c, rpcerr.InvalidArgument("device_credential is required"))
		return
	}

	ctx := c.Request.Context()
	account, err := h.directory.AuthenticateDevice(ctx, req.DeviceCredential, "", req.Create)
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		respondError(c, rpcerr.Unauthenticated(err, "Device credential is not linked to an account"))
		return
	case err != nil:
		respondError(c, rpcerr.Internal(err, "Could not authenticate device"))
		return
	}

	if err := h.refresher.EnsureFresh(ctx, account.ID); err != nil {
		respondError(c, err)
		return
	}

	session, err := h.tokens.GenerateToken(account.ID, account.Username)
	if err != nil {
		respondError(c, rpcerr.Internal(err, "Could not issue session token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id": account.ID,
		"token":      session.TokenString,
		"token_type": session.TokenType,
		"expires_in": int(time.Until(session.ExpiresAt).Seconds()),
	})
}
