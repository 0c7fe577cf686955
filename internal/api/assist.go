package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-crisis-response/internal/assist"
)

const maxImageBytes = 10 << 20

func (h *Handler) verify(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)

	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, assist.ErrEmptyImage.Error())
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read uploaded image")
		return
	}
	defer file.Close()

	v, err := h.assistant.Verify(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondAssistError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type chatBody struct {
	Question string `json:"question" binding:"required"`
}

func (h *Handler) chat(c *gin.Context) {
	var body chatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, assist.ErrEmptyPrompt.Error())
		return
	}

	answer, err := h.assistant.Ask(c.Request.Context(), body.Question)
	if err != nil {
		respondAssistError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// respondAssistError shows the user a fixed message; details only go to
// the log.
func respondAssistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assist.ErrEmptyImage), errors.Is(err, assist.ErrEmptyPrompt):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		slog.Warn("assist call failed", "path", c.FullPath(), "error", err)
		c.Error(err)
		respondError(c, http.StatusBadGateway, assist.ErrUnavailable.Error())
	}
}
