package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-crisis-response/internal/session"
)

const (
	sessionCookie = "session_id"
	sessionKey    = "session"
)

// SessionMiddleware attaches the caller's session, issuing a new cookie
// when none or a malformed one is presented.
func SessionMiddleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || !session.ValidID(id) {
			id = session.NewID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(sessionKey, store.Session(id))
		c.Next()
	}
}

func RequireGovernment() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.IsGovernment(currentSession(c)) {
			respondError(c, http.StatusForbidden, "government access required")
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

type loginBody struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// login accepts any credentials.
func (h *Handler) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login body")
		return
	}

	sess := currentSession(c)
	session.Login(sess, body.Identity)
	c.JSON(http.StatusOK, sessionView(sess))
}

func (h *Handler) logout(c *gin.Context) {
	sess := currentSession(c)
	session.Logout(sess)
	c.JSON(http.StatusOK, sessionView(sess))
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, sessionView(currentSession(c)))
}

func sessionView(sess *session.Session) gin.H {
	role, _ := sess.Get(session.RoleKey)
	return gin.H{
		"role":       role,
		"user":       session.User(sess),
		"government": session.IsGovernment(sess),
	}
}
