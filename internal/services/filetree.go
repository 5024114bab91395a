package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/response"
)

// FileTreeService manages a project's folders and files. Structural changes
// are broadcast to the room as file_tree_update events by the handlers.
type FileTreeService struct {
	db *gorm.DB
}

func NewFileTreeService(db *gorm.DB) *FileTreeService {
	return &FileTreeService{db: db}
}

type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	ParentID *uint  `json:"parent_id"`
}

type CreateFileRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Language string `json:"language"`
	FolderID *uint  `json:"folder_id"`
}

type UpdateFileRequest struct {
	Name     string  `json:"name"`
	Language string  `json:"language"`
	Content  *string `json:"content"`
}

// FolderNode is one folder in the nested tree response.
type FolderNode struct {
	models.Folder
	Folders []*FolderNode `json:"folders"`
	Files   []models.File `json:"files"`
}

// Tree returns the project's full file tree: nested folders with their files,
// plus root-level files.
type Tree struct {
	Folders []*FolderNode `json:"folders"`
	Files   []models.File `json:"files"`
}

func (s *FileTreeService) Tree(projectID uint) (*Tree, error) {
	var folders []models.Folder
	if err := s.db.Where("project_id = ?", projectID).Order("name ASC").Find(&folders).Error; err != nil {
		return nil, err
	}
	var files []models.File
	if err := s.db.Where("project_id = ?", projectID).Order("name ASC").Find(&files).Error; err != nil {
		return nil, err
	}

	nodes := make(map[uint]*FolderNode, len(folders))
	for i := range folders {
		nodes[folders[i].ID] = &FolderNode{Folder: folders[i], Folders: []*FolderNode{}, Files: []models.File{}}
	}

	tree := &Tree{Folders: []*FolderNode{}, Files: []models.File{}}
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Folders = append(parent.Folders, node)
				continue
			}
		}
		tree.Folders = append(tree.Folders, node)
	}
	for _, f := range files {
		if f.FolderID != nil {
			if parent, ok := nodes[*f.FolderID]; ok {
				parent.Files = append(parent.Files, f)
				continue
			}
		}
		tree.Files = append(tree.Files, f)
	}
	return tree, nil
}

// CreateFolder adds a folder; a non-nil parent must belong to the same
// project.
func (s *FileTreeService) CreateFolder(projectID uint, req *CreateFolderRequest) (*models.Folder, error) {
	if req.ParentID != nil {
		if err := s.checkFolder(projectID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	folder := models.Folder{
		ProjectID: projectID,
		ParentID:  req.ParentID,
		Name:      req.Name,
	}
	if err := s.db.Create(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// DeleteFolder removes a folder and everything under it, recursively.
func (s *FileTreeService) DeleteFolder(projectID, folderID uint) error {
	if err := s.checkFolder(projectID, folderID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteFolderTree(tx, projectID, folderID)
	})
}

func deleteFolderTree(tx *gorm.DB, projectID, folderID uint) error {
	var children []models.Folder
	if err := tx.Where("project_id = ? AND parent_id = ?", projectID, folderID).Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteFolderTree(tx, projectID, child.ID); err != nil {
			return err
		}
	}
	if err := tx.Where("project_id = ? AND folder_id = ?", projectID, folderID).Delete(&models.File{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Folder{}, folderID).Error
}

// CreateFile adds an empty file to the project root or a folder.
func (s *FileTreeService) CreateFile(projectID uint, req *CreateFileRequest) (*models.File, error) {
	if req.FolderID != nil {
		if err := s.checkFolder(projectID, *req.FolderID); err != nil {
			return nil, err
		}
	}

	file := models.File{
		ProjectID: projectID,
		FolderID:  req.FolderID,
		Name:      req.Name,
		Language:  req.Language,
	}
	if err := s.db.Create(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// GetFile returns one file with its content.
func (s *FileTreeService) GetFile(projectID, fileID uint) (*models.File, error) {
	var file models.File
	if err := s.db.Where("id = ? AND project_id = ?", fileID, projectID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("file not found")
		}
		return nil, err
	}
	return &file, nil
}

// UpdateFile renames a file or saves its content.
func (s *FileTreeService) UpdateFile(projectID, fileID uint, req *UpdateFileRequest) (*models.File, error) {
	file, err := s.GetFile(projectID, fileID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Language != "" {
		updates["language"] = req.Language
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if len(updates) == 0 {
		return file, nil
	}

	if err := s.db.Model(file).Updates(updates).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// DeleteFile removes a file.
func (s *FileTreeService) DeleteFile(projectID, fileID uint) error {
	result := s.db.Where("id = ? AND project_id = ?", fileID, projectID).Delete(&models.File{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("file not found")
	}
	return nil
}

func (s *FileTreeService) checkFolder(projectID, folderID uint) error {
	var count int64
	if err := s.db.Model(&models.Folder{}).
		Where("id = ? AND project_id = ?", folderID, projectID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return response.NewNotFound("folder not found")
	}
	return nil
}
