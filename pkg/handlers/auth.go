package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"gitcms/pkg/config"
	"gitcms/pkg/models"
	"gitcms/pkg/services"
	"gitcms/pkg/store"
)

// Cookie session keys. The credential bundle is the only durable local
// state; its absence means logged out.
const (
	cookieSessionID  = "session_id"
	cookieAccount    = "account"
	cookieRepository = "repository"
	cookieToken      = "access_token"
	cookieBranch     = "branch"
)

const sessionContextKey = "gitcms_session"

// API carries the handlers' collaborators: the session registry and the
// sync layer over the remote store.
type API struct {
	Manager *services.SessionManager
	Sync    *services.Syncer
	Logger  *zap.Logger
}

func NewAPI(manager *services.SessionManager, sync *services.Syncer, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{Manager: manager, Sync: sync, Logger: logger}
}

// AuthRequired gates every content operation behind a validated
// session. Without one, API calls get 401 and page loads a redirect.
func (a *API) AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	id, _ := session.Get(cookieSessionID).(string)
	if id != "" {
		if s, ok := a.Manager.Get(id); ok {
			c.Set(sessionContextKey, s)
			c.Next()
			return
		}
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	} else {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

func (a *API) session(c *gin.Context) *services.Session {
	return c.MustGet(sessionContextKey).(*services.Session)
}

type loginRequest struct {
	Account    string `json:"account"`
	Repository string `json:"repository"`
	Token      string `json:"token"`
	Branch     string `json:"branch"`
}

// Login validates a credential bundle against the store with one
// read-only probe, then creates the session and loads all documents.
// Fields omitted from the request fall back to the bundle persisted in
// the cookie (or, for the token, to a completed OAuth flow).
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	session := sessions.Default(c)
	pick := func(v, cookieKey string) string {
		if v != "" {
			return v
		}
		stored, _ := session.Get(cookieKey).(string)
		return stored
	}
	creds := models.Credentials{
		Account:     pick(req.Account, cookieAccount),
		Repository:  pick(req.Repository, cookieRepository),
		AccessToken: pick(req.Token, cookieToken),
		Branch:      pick(req.Branch, cookieBranch),
	}
	if creds.Branch == "" {
		creds.Branch = config.DefaultBranch
	}
	if !creds.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account, repository and token are required"})
		return
	}

	if err := a.Manager.NewStore(creds).CheckAccess(c.Request.Context()); err != nil {
		a.Logger.Warn("login probe failed", zap.String("account", creds.Account), zap.Error(err))
		respondError(c, err)
		return
	}

	s := a.Manager.Create(creds)
	session.Set(cookieSessionID, s.ID)
	session.Set(cookieAccount, creds.Account)
	session.Set(cookieRepository, creds.Repository)
	session.Set(cookieToken, creds.AccessToken)
	session.Set(cookieBranch, creds.Branch)
	session.Save()

	result := a.Sync.LoadAll(c.Request.Context(), s)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "load": result})
}

// GithubLogin starts the OAuth flow as an alternative to pasting a
// token.
func (a *API) GithubLogin(c *gin.Context) {
	url := config.OauthConf.AuthCodeURL("state", oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// AuthCallback stores the exchanged token in the cookie; the panel then
// completes login with account, repository and branch.
func (a *API) AuthCallback(c *gin.Context) {
	code := c.Query("code")
	token, err := config.OauthConf.Exchange(context.Background(), code)
	if err != nil {
		c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
		return
	}

	session := sessions.Default(c)
	session.Set(cookieToken, token.AccessToken)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

// Logout ends the session and clears the stored credentials. Every
// cached document is discarded; the next login forces a fresh load.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if id, _ := session.Get(cookieSessionID).(string); id != "" {
		a.Manager.End(id)
	}
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// respondError maps the failure taxonomy onto HTTP statuses. Conflicts
// and stale copies are 409 so the panel can tell "reload first" apart
// from a hard failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case err == nil:
		return
	case errors.Is(err, store.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrUnknownCollection):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, services.ErrStale):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNotLoaded):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
