package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-crisis-response/internal/assist"
	"github.com/mr1hm/go-crisis-response/internal/intake"
	"github.com/mr1hm/go-crisis-response/internal/notify"
	"github.com/mr1hm/go-crisis-response/internal/repository"
	"github.com/mr1hm/go-crisis-response/internal/session"
	"github.com/mr1hm/go-crisis-response/internal/transfer"
)

// Assistant is the external verification and chat service.
type Assistant interface {
	Verify(ctx context.Context, filename string, image io.Reader) (*assist.Verification, error)
	Ask(ctx context.Context, question string) (string, error)
}

type Deps struct {
	Requests    repository.RequestRepository
	Notices     repository.NoticeRepository
	Catalog     repository.CatalogRepository
	Intake      *intake.Manager
	Transfers   *transfer.Service
	Assistant   Assistant
	Sessions    *session.Store
	Broadcaster *notify.Broadcaster
}

type Handler struct {
	requests    repository.RequestRepository
	notices     repository.NoticeRepository
	catalog     repository.CatalogRepository
	intake      *intake.Manager
	transfers   *transfer.Service
	assistant   Assistant
	sessions    *session.Store
	broadcaster *notify.Broadcaster
	now         func() time.Time
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		requests:    deps.Requests,
		notices:     deps.Notices,
		catalog:     deps.Catalog,
		intake:      deps.Intake,
		transfers:   deps.Transfers,
		assistant:   deps.Assistant,
		sessions:    deps.Sessions,
		broadcaster: deps.Broadcaster,
		now:         time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api", SessionMiddleware(h.sessions))
	gov := api.Group("", RequireGovernment())

	api.POST("/auth/login", h.login)
	api.POST("/auth/logout", h.logout)
	api.GET("/auth/me", h.me)

	api.GET("/requests", h.listRequests)
	api.GET("/requests/:id", h.getRequest)
	api.POST("/requests", h.submitRequest)
	gov.PATCH("/requests/:id/status", h.setRequestStatus)
	api.GET("/export/requests.csv", h.exportRequests)

	api.GET("/aid-requests", h.listAidRequests)
	api.GET("/aid-requests/:country/funding", h.aidFunding)
	gov.POST("/aid-requests/:country", h.addAidItem)

	api.GET("/states", h.listStates)
	api.GET("/states/:name", h.getState)
	api.GET("/overview/:scope", h.overview)
	api.GET("/resources", h.listResources)
	api.GET("/alerts", h.listAlerts)

	api.GET("/notices", h.listNotices)
	api.GET("/notices/stream", h.streamNotices)
	gov.POST("/notices", h.publishNotice)

	gov.POST("/transfers", h.createTransfer)
	api.GET("/transfers/:id", h.getTransfer)

	api.POST("/verify", h.verify)
	api.POST("/chat", h.chat)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondStoreError maps validation and lookup failures to 4xx and logs
// anything else as a 500.
func respondStoreError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, intake.ErrInvalid):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, what+" not found")
	default:
		slog.Error("store operation failed", "what", what, "error", err)
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to process "+what)
	}
}
