package services

import (
	"gorm.io/gorm"

	"github.com/codehive/server/internal/models"
)

// DashboardService aggregates per-project activity numbers for the workspace
// overview page.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type ProjectStats struct {
	MemberCount      int64                `json:"member_count"`
	PendingRequests  int64                `json:"pending_requests"`
	FileCount        int64                `json:"file_count"`
	DocumentCount    int64                `json:"document_count"`
	UnresolvedAlerts int64                `json:"unresolved_alerts"`
	ChatMessages     int64                `json:"chat_messages"`
	RecentChat       []models.ChatMessage `json:"recent_chat"`
}

// ProjectStats collects counts across a project's collaboration surfaces.
func (s *DashboardService) ProjectStats(projectID uint) (*ProjectStats, error) {
	stats := &ProjectStats{}

	counts := []struct {
		model interface{}
		query string
		args  []interface{}
		dest  *int64
	}{
		{&models.Membership{}, "project_id = ? AND status = ?", []interface{}{projectID, models.StatusApproved}, &stats.MemberCount},
		{&models.Membership{}, "project_id = ? AND status = ?", []interface{}{projectID, models.StatusPending}, &stats.PendingRequests},
		{&models.File{}, "project_id = ?", []interface{}{projectID}, &stats.FileCount},
		{&models.Document{}, "project_id = ?", []interface{}{projectID}, &stats.DocumentCount},
		{&models.Alert{}, "project_id = ? AND is_resolved = ?", []interface{}{projectID, false}, &stats.UnresolvedAlerts},
		{&models.ChatMessage{}, "project_id = ?", []interface{}{projectID}, &stats.ChatMessages},
	}
	for _, c := range counts {
		if err := s.db.Model(c.model).Where(c.query, c.args...).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at DESC").
		Limit(10).
		Find(&stats.RecentChat).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
