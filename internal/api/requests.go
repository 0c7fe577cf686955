package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-crisis-response/internal/export"
	"github.com/mr1hm/go-crisis-response/internal/intake"
	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/query"
)

// parseRequestQuery reads category, status, q, sort and dir.
func parseRequestQuery(c *gin.Context) (query.Filter, query.Order, error) {
	var f query.Filter
	if cat := c.Query("category"); cat != "" {
		parsed, err := models.ParseCategory(cat)
		if err != nil {
			return f, query.Order{}, err
		}
		f.Category = parsed
	}
	if st := c.Query("status"); st != "" {
		parsed, err := models.ParseStatus(st)
		if err != nil {
			return f, query.Order{}, err
		}
		f.Status = parsed
	}
	f.Search = c.Query("q")

	order, err := query.ParseOrder(c.Query("sort"), c.Query("dir"))
	if err != nil {
		return f, query.Order{}, err
	}
	return f, order, nil
}

func (h *Handler) filteredRequests(c *gin.Context) ([]models.Request, bool) {
	f, order, err := parseRequestQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}

	all, err := h.requests.ListRequests(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "requests")
		return nil, false
	}
	return query.Apply(all, f, order), true
}

func (h *Handler) listRequests(c *gin.Context) {
	requests, ok := h.filteredRequests(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(requests),
		"requests": requests,
	})
}

func (h *Handler) getRequest(c *gin.Context) {
	r, err := h.requests.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "request")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) submitRequest(c *gin.Context) {
	var body intake.NewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	r, err := h.intake.SubmitRequest(c.Request.Context(), body)
	if err != nil {
		respondStoreError(c, err, "request")
		return
	}
	c.JSON(http.StatusCreated, r)
}

type statusBody struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) setRequestStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "status is required")
		return
	}

	r, err := h.intake.SetStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondStoreError(c, err, "request")
		return
	}
	c.JSON(http.StatusOK, r)
}

// exportRequests downloads the same list /api/requests would return.
func (h *Handler) exportRequests(c *gin.Context) {
	requests, ok := h.filteredRequests(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(h.now())+`"`)
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, requests); err != nil {
		c.Error(err)
	}
}
