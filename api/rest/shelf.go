package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shelftrack/audit"
	"shelftrack/core/registry"
	mw "shelftrack/middleware"
)

// ShelfHandler handles shelf REST endpoints.
type ShelfHandler struct {
	registry *registry.Registry
	audit    *audit.Service
}

// NewShelfHandler creates a new ShelfHandler.
func NewShelfHandler(reg *registry.Registry, auditSvc *audit.Service) *ShelfHandler {
	return &ShelfHandler{registry: reg, audit: auditSvc}
}

type createShelfRequest struct {
	Name   string `json:"name"   binding:"required,min=1,max=100"`
	Row    string `json:"row"    binding:"required,min=1,max=8"`
	Number int    `json:"number" binding:"required,min=1"`
	Color  string `json:"color"  binding:"max=32"`
}

// Create handles POST /api/shelves.
func (h *ShelfHandler) Create(c *gin.Context) {
	var req createShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := mw.GetUserID(c)
	var createdBy *int64
	if userID != 0 {
		createdBy = &userID
	}

	shelf, err := h.registry.Create(c.Request.Context(), req.Name, req.Row, req.Number, req.Color, createdBy)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	if h.audit != nil {
		h.audit.Log(audit.Entry{
			TraceID:  mw.GetTraceID(c),
			UserID:   createdBy,
			Action:   "shelf.create",
			Entity:   "shelf",
			EntityID: shelf.ID,
			Request:  req,
			IP:       c.ClientIP(),
		})
	}
	c.JSON(http.StatusCreated, shelf)
}

// List handles GET /api/shelves.
func (h *ShelfHandler) List(c *gin.Context) {
	shelves, err := h.registry.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelves": shelves})
}

// Get handles GET /api/shelves/:id.
func (h *ShelfHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	shelf, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, shelf)
}

// Delete handles DELETE /api/shelves/:id. Materials still referencing the
// shelf are left as-is; clients wanting a clean delete remove them first.
func (h *ShelfHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.registry.Delete(c.Request.Context(), id); err != nil {
		writeEngineError(c, err)
		return
	}
	if h.audit != nil {
		userID := mw.GetUserID(c)
		h.audit.Log(audit.Entry{
			TraceID:  mw.GetTraceID(c),
			UserID:   &userID,
			Action:   "shelf.delete",
			Entity:   "shelf",
			EntityID: id,
			IP:       c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
