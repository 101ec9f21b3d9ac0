package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shelftrack/audit"
	"shelftrack/core/inspection"
	mw "shelftrack/middleware"
)

// InspectionHandler handles inspection REST endpoints.
type InspectionHandler struct {
	processor *inspection.Processor
	audit     *audit.Service
}

// NewInspectionHandler creates a new InspectionHandler.
func NewInspectionHandler(p *inspection.Processor, auditSvc *audit.Service) *InspectionHandler {
	return &InspectionHandler{processor: p, audit: auditSvc}
}

type createInspectionRequest struct {
	Date        time.Time `json:"date"         binding:"required"`
	MaterialIDs []int64   `json:"material_ids"`
	Inspector   string    `json:"inspector"    binding:"required,min=1,max=64"`
	Type        string    `json:"type"         binding:"max=32"`
	Status      string    `json:"status"       binding:"max=32"`
	Result      string    `json:"result"`
	Notes       string    `json:"notes"`
	Report      string    `json:"report"`
}

// Create handles POST /api/inspections. Unknown material ids are not an
// error; the cascade simply skips them.
func (h *InspectionHandler) Create(c *gin.Context) {
	var req createInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	insp, err := h.processor.Record(c.Request.Context(), inspection.RecordInput{
		Date:        req.Date,
		MaterialIDs: req.MaterialIDs,
		Inspector:   req.Inspector,
		Type:        req.Type,
		Status:      req.Status,
		Result:      req.Result,
		Notes:       req.Notes,
		Report:      req.Report,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	if h.audit != nil {
		userID := mw.GetUserID(c)
		h.audit.Log(audit.Entry{
			TraceID:  mw.GetTraceID(c),
			UserID:   &userID,
			Action:   "inspection.create",
			Entity:   "inspection",
			EntityID: insp.ID,
			Request:  req,
			IP:       c.ClientIP(),
		})
	}
	c.JSON(http.StatusCreated, insp)
}

// List handles GET /api/inspections.
func (h *InspectionHandler) List(c *gin.Context) {
	inspections, err := h.processor.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inspections": inspections})
}
