package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shelftrack/audit"
	"shelftrack/core/inventory"
	mw "shelftrack/middleware"
	"shelftrack/storage"
)

// MaterialHandler handles material REST endpoints. Create and update accept
// multipart forms so an image can ride along; the file is stored by the
// uploads collaborator and only its path reaches the engine.
type MaterialHandler struct {
	manager *inventory.Manager
	uploads *storage.Uploads
	audit   *audit.Service
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(mgr *inventory.Manager, uploads *storage.Uploads, auditSvc *audit.Service) *MaterialHandler {
	return &MaterialHandler{manager: mgr, uploads: uploads, audit: auditSvc}
}

type createMaterialForm struct {
	Name           string     `form:"name"            binding:"required,min=1,max=100"`
	Category       string     `form:"category"        binding:"required,min=1,max=64"`
	Description    string     `form:"description"`
	Notes          string     `form:"notes"`
	EntryDate      time.Time  `form:"entry_date"      binding:"required" time_format:"2006-01-02"`
	Condition      *int       `form:"condition"       binding:"required,min=0,max=100"`
	Shelf          string     `form:"shelf"           binding:"required,max=100"`
	ShelfID        *int64     `form:"shelf_id"`
	Position       string     `form:"position"        binding:"required,max=16"`
	NextInspection *time.Time `form:"next_inspection" time_format:"2006-01-02"`
}

// saveImage stores the optional "image" form file and returns its path, or ""
// when no file was sent.
func (h *MaterialHandler) saveImage(c *gin.Context) (string, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", true // no file attached
	}
	path, err := h.uploads.Save(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return path, true
}

// Create handles POST /api/materials.
func (h *MaterialHandler) Create(c *gin.Context) {
	var form createMaterialForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imagePath, ok := h.saveImage(c)
	if !ok {
		return
	}

	userID := mw.GetUserID(c)
	var createdBy *int64
	if userID != 0 {
		createdBy = &userID
	}

	mat, err := h.manager.Create(c.Request.Context(), inventory.CreateInput{
		Name:           form.Name,
		Category:       form.Category,
		Description:    form.Description,
		Notes:          form.Notes,
		EntryDate:      form.EntryDate,
		Condition:      *form.Condition,
		Shelf:          form.Shelf,
		ShelfID:        form.ShelfID,
		Position:       form.Position,
		NextInspection: form.NextInspection,
		CreatedBy:      createdBy,
	}, imagePath)
	if err != nil {
		// The stored file has no owner if the create failed.
		_ = h.uploads.Remove(imagePath)
		writeEngineError(c, err)
		return
	}
	if h.audit != nil {
		h.audit.Log(audit.Entry{
			TraceID:  mw.GetTraceID(c),
			UserID:   createdBy,
			Action:   "material.create",
			Entity:   "material",
			EntityID: mat.ID,
			Request:  form,
			IP:       c.ClientIP(),
		})
	}
	c.JSON(http.StatusCreated, mat)
}

type updateMaterialForm struct {
	Name           *string    `form:"name"            binding:"omitempty,min=1,max=100"`
	Category       *string    `form:"category"        binding:"omitempty,min=1,max=64"`
	Description    *string    `form:"description"`
	Notes          *string    `form:"notes"`
	EntryDate      *time.Time `form:"entry_date"      time_format:"2006-01-02"`
	Condition      *int       `form:"condition"       binding:"omitempty,min=0,max=100"`
	Shelf          *string    `form:"shelf"           binding:"omitempty,max=100"`
	ShelfID        *int64     `form:"shelf_id"`
	Position       *string    `form:"position"        binding:"omitempty,max=16"`
	NextInspection *time.Time `form:"next_inspection" time_format:"2006-01-02"`
}

// Update handles PUT /api/materials/:id. Only the provided fields change;
// placement edits do not touch occupancy.
func (h *MaterialHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var form updateMaterialForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imagePath, ok := h.saveImage(c)
	if !ok {
		return
	}

	mat, err := h.manager.Update(c.Request.Context(), id, inventory.UpdateInput{
		Name:           form.Name,
		Category:       form.Category,
		Description:    form.Description,
		Notes:          form.Notes,
		EntryDate:      form.EntryDate,
		Condition:      form.Condition,
		Shelf:          form.Shelf,
		ShelfID:        form.ShelfID,
		Position:       form.Position,
		NextInspection: form.NextInspection,
	}, imagePath)
	if err != nil {
		_ = h.uploads.Remove(imagePath)
		writeEngineError(c, err)
		return
	}
	if h.audit != nil {
		userID := mw.GetUserID(c)
		h.audit.Log(audit.Entry{
			TraceID:  mw.GetTraceID(c),
			UserID:   &userID,
			Action:   "material.update",
			Entity:   "material",
			EntityID: id,
			Request:  form,
			IP:       c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, mat)
}

// Get handles GET /api/materials/:id.
func (h *MaterialHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	mat, err := h.manager.Get(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, mat)
}

type listMaterialsQuery struct {
	Name         string `form:"name"`
	Category     string `form:"category"`
	State        string `form:"state" binding:"omitempty,oneof=good warning bad"`
	Shelf        string `form:"shelf"`
	MinCondition *int   `form:"min_condition" binding:"omitempty,min=0,max=100"`
	MaxCondition *int   `form:"max_condition" binding:"omitempty,min=0,max=100"`
}

// List handles GET /api/materials with conjunctive filter query params.
func (h *MaterialHandler) List(c *gin.Context) {
	var q listMaterialsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	materials, err := h.manager.List(c.Request.Context(), inventory.Filter{
		Name:         q.Name,
		Category:     q.Category,
		State:        q.State,
		Shelf:        q.Shelf,
		MinCondition: q.MinCondition,
		MaxCondition: q.MaxCondition,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": materials})
}

// Delete handles DELETE /api/materials/:id.
func (h *MaterialHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.manager.Delete(c.Request.Context(), id); err != nil {
		writeEngineError(c, err)
		return
	}
	if h.audit != nil {
		userID := mw.GetUserID(c)
		h.audit.Log(audit.Entry{
			TraceID:  mw.GetTraceID(c),
			UserID:   &userID,
			Action:   "material.delete",
			Entity:   "material",
			EntityID: id,
			IP:       c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
