package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plantfinder/pkg/models"
)

// CatalogLister exposes the unfiltered static catalog.
type CatalogLister interface {
	All() []models.UnifiedPlant
}

type Handler struct {
	Sessions *Registry
	Tokens   *SessionTokens
	Catalog  CatalogLister
	Hub      *Hub
}

func NewHandler(sessions *Registry, tokens *SessionTokens, catalog CatalogLister, hub *Hub) *Handler {
	return &Handler{Sessions: sessions, Tokens: tokens, Catalog: catalog, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.createSession)
	rg.GET("/catalog", h.catalog)

	authed := rg.Group("", SessionMiddleware(h.Tokens, h.Sessions))
	authed.DELETE("/sessions", h.endSession)
	authed.GET("/plants", h.search)      // GET /plants?light=&time=&experience=
	authed.GET("/plants/state", h.state) // GET /plants/state
	authed.GET("/plants/:id", h.details) // GET /plants/primary-42
	if h.Hub != nil {
		authed.GET("/sessions/ws", WSHandler(h.Hub))
	}
}

func (h *Handler) createSession(c *gin.Context) {
	id, facade := h.Sessions.Create()

	token, exp, err := h.Tokens.Issue(id)
	if err != nil {
		_ = h.Sessions.End(id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": id,
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
		"state":      facade.State(),
	})
}

func (h *Handler) endSession(c *gin.Context) {
	claims := MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if err := h.Sessions.End(claims.SessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "session ended"})
}

func (h *Handler) search(c *gin.Context) {
	filters, err := models.ParseFilters(c.Query("light"), c.Query("time"), c.Query("experience"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facade := MustGetFacade(c)
	c.JSON(http.StatusOK, facade.Search(c.Request.Context(), filters))
}

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, MustGetFacade(c).State())
}

func (h *Handler) details(c *gin.Context) {
	id := c.Param("id")
	p, err := MustGetFacade(c).GetPlantDetails(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) catalog(c *gin.Context) {
	items := []models.UnifiedPlant{}
	if h.Catalog != nil {
		items = append(items, h.Catalog.All()...)
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}
