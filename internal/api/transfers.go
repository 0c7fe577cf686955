package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-crisis-response/internal/severity"
	"github.com/mr1hm/go-crisis-response/internal/transfer"
)

type transferBody struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

// createTransfer starts a simulated transfer and answers 202 at once; the
// client polls GET /api/transfers/:id for the hash.
func (h *Handler) createTransfer(c *gin.Context) {
	var body transferBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "recipient and amount are required")
		return
	}

	amount, err := severity.ParseAmount(body.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.transfers.Submit(body.Recipient, amount)
	switch {
	case errors.Is(err, transfer.ErrNoRecipient), errors.Is(err, transfer.ErrInvalidAmount):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, transfer.ErrBusy):
		respondError(c, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to start transfer")
		return
	}

	c.JSON(http.StatusAccepted, t)
}

func (h *Handler) getTransfer(c *gin.Context) {
	t, err := h.transfers.Get(c.Param("id"))
	if errors.Is(err, transfer.ErrNotFound) {
		respondError(c, http.StatusNotFound, "transfer not found")
		return
	}
	c.JSON(http.StatusOK, t)
}
