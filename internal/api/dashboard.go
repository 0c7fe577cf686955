package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/severity"
)

type regionView struct {
	models.RegionOverview
	Score  int                       `json:"score"`
	Trends map[string]severity.Trend `json:"trends"`
}

type stateView struct {
	models.StateDetail
	Score int `json:"score"`
}

func (h *Handler) overview(c *gin.Context) {
	scope := models.Scope(strings.ToLower(c.Param("scope")))
	if !scope.Valid() {
		respondError(c, http.StatusBadRequest, "scope must be international, national or local")
		return
	}

	regions, err := h.catalog.Regions(c.Request.Context(), scope)
	if err != nil {
		respondStoreError(c, err, "regions")
		return
	}

	views := make([]regionView, 0, len(regions))
	for _, r := range regions {
		trends := make(map[string]severity.Trend, len(r.Indicators))
		for _, ind := range r.Indicators {
			trends[ind.Label] = severity.TrendOf(ind.Level)
		}
		views = append(views, regionView{RegionOverview: r, Score: severity.RegionScore(r), Trends: trends})
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": severity.Summarize(scope, regions),
		"regions": views,
	})
}

func (h *Handler) listStates(c *gin.Context) {
	states, err := h.catalog.States(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "states")
		return
	}

	views := make([]stateView, 0, len(states))
	for _, s := range states {
		views = append(views, stateView{StateDetail: s, Score: severity.StateScore(s)})
	}
	c.JSON(http.StatusOK, gin.H{"states": views})
}

func (h *Handler) getState(c *gin.Context) {
	s, err := h.catalog.State(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondStoreError(c, err, "state")
		return
	}
	c.JSON(http.StatusOK, stateView{StateDetail: *s, Score: severity.StateScore(*s)})
}

func (h *Handler) listAidRequests(c *gin.Context) {
	aid, err := h.catalog.AidRequests(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "aid requests")
		return
	}
	c.JSON(http.StatusOK, aid)
}

type aidItemBody struct {
	Item     string `json:"item" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Urgency  string `json:"urgency" binding:"required,oneof=low medium high critical"`
	Funding  string `json:"funding"`
}

func (h *Handler) addAidItem(c *gin.Context) {
	country := strings.TrimSpace(c.Param("country"))
	var body aidItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "item, quantity and a valid urgency are required")
		return
	}
	if body.Funding != "" {
		if _, err := severity.ParseAmount(body.Funding); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	item := models.AidItem{
		Item:     strings.TrimSpace(body.Item),
		Quantity: strings.TrimSpace(body.Quantity),
		Urgency:  models.Urgency(body.Urgency),
		Funding:  strings.TrimSpace(body.Funding),
	}
	if err := h.catalog.AddAidItem(c.Request.Context(), country, item); err != nil {
		respondStoreError(c, err, "aid request")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"country": country, "item": item})
}

func (h *Handler) aidFunding(c *gin.Context) {
	country := c.Param("country")
	aid, err := h.catalog.AidRequests(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "aid requests")
		return
	}

	var (
		items []models.AidItem
		found bool
	)
	for name, list := range aid {
		if strings.EqualFold(name, country) {
			country, items, found = name, list, true
			break
		}
	}
	if !found {
		respondError(c, http.StatusNotFound, "country not found")
		return
	}

	total, skipped := severity.FundingTotal(items)
	c.JSON(http.StatusOK, gin.H{
		"country":  country,
		"items":    len(items),
		"total":    total.StringFixed(2),
		"unpriced": skipped,
		"currency": "USD",
		"average":  average(total, len(items)-skipped).StringFixed(2),
	})
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

func (h *Handler) listResources(c *gin.Context) {
	resources, err := h.catalog.Resources(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "resources")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

func (h *Handler) listAlerts(c *gin.Context) {
	alerts, err := h.catalog.Alerts(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "alerts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
