package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/realtime"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/pkg/logger"
	"github.com/codehive/server/pkg/response"
)

// FileTreeHandler manages folders and files. Structural changes broadcast a
// file_tree_update to the room and queue an AI index rebuild.
type FileTreeHandler struct {
	fileTreeService *services.FileTreeService
	perms           *services.PermissionService
	bridge          *realtime.Bridge
	queue           services.TaskQueue
}

func NewFileTreeHandler(db *gorm.DB, bridge *realtime.Bridge, queue services.TaskQueue) *FileTreeHandler {
	return &FileTreeHandler{
		fileTreeService: services.NewFileTreeService(db),
		perms:           services.NewPermissionService(db),
		bridge:          bridge,
		queue:           queue,
	}
}

// Tree returns the project's full file tree
// GET /api/projects/:id/tree
func (h *FileTreeHandler) Tree(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}

	tree, err := h.fileTreeService.Tree(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tree)
}

// CreateFolder adds a folder
// POST /api/projects/:id/folders
func (h *FileTreeHandler) CreateFolder(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}

	var req services.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	folder, err := h.fileTreeService.CreateFolder(projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.FileTreeChanged(projectID, fmt.Sprintf("folder %s created", folder.Name))

	response.Created(c, folder)
}

// DeleteFolder removes a folder and everything under it
// DELETE /api/projects/:id/folders/:folderId
func (h *FileTreeHandler) DeleteFolder(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}
	folderID, err := strconv.ParseUint(c.Param("folderId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid folder id")
		return
	}

	if err := h.fileTreeService.DeleteFolder(projectID, uint(folderID)); err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.FileTreeChanged(projectID, "folder deleted")
	h.reindex(projectID)

	response.Success(c, gin.H{"message": "folder deleted"})
}

// CreateFile adds a file
// POST /api/projects/:id/files
func (h *FileTreeHandler) CreateFile(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}

	var req services.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := h.fileTreeService.CreateFile(projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.FileTreeChanged(projectID, fmt.Sprintf("file %s created", file.Name))
	h.reindex(projectID)

	response.Created(c, file)
}

// GetFile returns one file with content
// GET /api/projects/:id/files/:fileId
func (h *FileTreeHandler) GetFile(c *gin.Context) {
	projectID, ok := h.viewableProject(c)
	if !ok {
		return
	}
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid file id")
		return
	}

	file, err := h.fileTreeService.GetFile(projectID, uint(fileID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, file)
}

// UpdateFile renames a file or saves its content
// PUT /api/projects/:id/files/:fileId
func (h *FileTreeHandler) UpdateFile(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid file id")
		return
	}

	var req services.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := h.fileTreeService.UpdateFile(projectID, uint(fileID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Renames change the tree; content saves only stale the AI index.
	if req.Name != "" {
		h.bridge.FileTreeChanged(projectID, fmt.Sprintf("file renamed to %s", file.Name))
	}
	h.reindex(projectID)

	response.Success(c, file)
}

// DeleteFile removes a file
// DELETE /api/projects/:id/files/:fileId
func (h *FileTreeHandler) DeleteFile(c *gin.Context) {
	projectID, ok := h.editableProject(c)
	if !ok {
		return
	}
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid file id")
		return
	}

	if err := h.fileTreeService.DeleteFile(projectID, uint(fileID)); err != nil {
		response.Error(c, err)
		return
	}

	h.bridge.FileTreeChanged(projectID, "file deleted")
	h.reindex(projectID)

	response.Success(c, gin.H{"message": "file deleted"})
}

func (h *FileTreeHandler) reindex(projectID uint) {
	if err := h.queue.Enqueue(&services.IndexTask{ProjectID: projectID}); err != nil {
		logger.Warn().Err(err).Uint("project_id", projectID).Msg("index enqueue failed")
	}
}

func (h *FileTreeHandler) viewableProject(c *gin.Context) (uint, bool) {
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

func (h *FileTreeHandler) editableProject(c *gin.Context) (uint, bool) {
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
