package handlers

import (
	"net/http"

	"github.com/go-authgate/devicelink/internal/services"

	"github.com/gin-gonic/gin"
)

// LinkHandler serves the link-code RPCs.
type LinkHandler struct {
	tickets *services.LinkTicketService
	linker  *services.AccountLinker
}

func NewLinkHandler(
	tickets *services.LinkTicketService,
	linker *services.AccountLinker,
) *LinkHandler {
	return &LinkHandler{tickets: tickets, linker: linker}
}

type issueLinkCodeRequest struct {
	DeviceCredential string `json:"device_credential"`
}

// IssueLinkCode handles POST /v1/rpc/link/code
// Called by the device to obtain a code the player types on another screen.
func (h *LinkHandler) IssueLinkCode(c *gin.Context) {
	var req issueLinkCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errCorruptPayload)
		return
	}

	ticket, err := h.tickets.Issue(c.Request.Context(), req.DeviceCredential)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       ticket.Code,
		"expires_at": ticket.ExpiresAt,
	})
}

// LinkDevice handles POST /v1/rpc/link/device
// Called by the companion surface once the OAuth redirect has completed.
func (h *LinkHandler) LinkDevice(c *gin.Context) {
	var req services.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errCorruptPayload)
		return
	}

	if _, err := h.linker.LinkDevice(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
