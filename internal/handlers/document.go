package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/realtime"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/response"
)

// DocumentHandler manages shared documentation. Creating or deleting a doc
// broadcasts doc_list_update; editing one broadcasts doc_content_update with
// the editor and new body.
type DocumentHandler struct {
	documentService *services.DocumentService
	perms           *services.PermissionService
	bridge          *realtime.Bridge
}

func NewDocumentHandler(db *gorm.DB, bridge *realtime.Bridge) *DocumentHandler {
	return &DocumentHandler{
		documentService: services.NewDocumentService(db),
		perms:           services.NewPermissionService(db),
		bridge:          bridge,
	}
}

// List returns a project's documents
// GET /api/projects/:id/docs
func (h *DocumentHandler) List(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}

	docs, err := h.documentService.List(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, docs)
}

// Get returns one document
// GET /api/projects/:id/docs/:docId
func (h *DocumentHandler) Get(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}
	docID, err := strconv.ParseUint(c.Param("docId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid document id")
		return
	}

	doc, err := h.documentService.Get(projectID, uint(docID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, doc)
}

// Create adds a document
// POST /api/projects/:id/docs
func (h *DocumentHandler) Create(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}

	var req services.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Create(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.DocListChanged(projectID, fmt.Sprintf("document %s created", doc.Title))

	response.Created(c, doc)
}

// Update edits a document
// PUT /api/projects/:id/docs/:docId
func (h *DocumentHandler) Update(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}
	docID, err := strconv.ParseUint(c.Param("docId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid document id")
		return
	}

	var req services.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Update(projectID, uint(docID), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	updaterName := ""
	if doc.LastUpdatedBy != nil {
		updaterName = doc.LastUpdatedBy.Username
	}
	h.bridge.DocContentChanged(projectID, doc.ID, realtime.DocUpdate{
		UpdaterName: updaterName,
		UpdatedAt:   doc.UpdatedAt,
		Title:       doc.Title,
		Content:     doc.Content,
	})

	response.Success(c, doc)
}

// Delete removes a document
// DELETE /api/projects/:id/docs/:docId
func (h *DocumentHandler) Delete(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}
	docID, err := strconv.ParseUint(c.Param("docId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid document id")
		return
	}

	if err := h.documentService.Delete(projectID, uint(docID)); err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.DocListChanged(projectID, "document deleted")

	response.Success(c, gin.H{"message": "document deleted"})
}

func (h *DocumentHandler) viewableProject(c *gin.Context) (uint, bool) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return 0, false
	}
	if !h.perms.CanView(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "not a member of this project")
		return 0, false
	}
	return projectID, true
}

func (h *DocumentHandler) editableProject(c *gin.Context) (uint, bool) {
	projectID, err := parseProjectID(c)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return 0, false
	}
	if !h.perms.CanEdit(middleware.GetUserID(c), projectID) {
		response.Forbidden(c, "edit access required")
		return 0, false
	}
	return projectID, true
}
