package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidFolder = errors.New("invalid vmid or empty folder name")

// BaseModel holds the bookkeeping columns of stored records.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id" example:"1"`
	CreatedAt time.Time `json:"created_at" example:"2025-03-02T10:12:40.551203+01:00"`
	UpdatedAt time.Time `json:"updated_at" example:"2025-03-09T18:44:02.002914+01:00"`
}

// FolderAssignment groups a guest under a local folder name.
type FolderAssignment struct {
	BaseModel
	VMID   int    `gorm:"column:vmid;uniqueIndex;not null" json:"vmid"`
	Folder string `gorm:"not null;index" json:"folder"`
}

// SetFolder stores or replaces the folder of vmid.
func SetFolder(db *gorm.DB, vmid int, folder string) (*FolderAssignment, error) {
	folder = strings.TrimSpace(folder)
	if vmid <= 0 || folder == "" {
		return nil, ErrInvalidFolder
	}

	assignment := FolderAssignment{VMID: vmid, Folder: folder}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vmid"}},
		DoUpdates: clause.AssignmentColumns([]string{"folder", "updated_at"}),
	}).Create(&assignment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save folder for VMID %d: %w", vmid, err)
	}
	return &assignment, nil
}

// LoadFolders returns every assignment keyed by vmid.
func LoadFolders(db *gorm.DB) (map[int]string, error) {
	var assignments []FolderAssignment
	if err := db.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to load folders: %w", err)
	}

	folders := make(map[int]string, len(assignments))
	for _, a := range assignments {
		folders[a.VMID] = a.Folder
	}
	return folders, nil
}

// ApplyFolders sets the Folder of each resource in place.
func ApplyFolders(resources []Resource, folders map[int]string) {
	for i := range resources {
		if folder, ok := folders[resources[i].VMID]; ok {
			resources[i].Folder = folder
		} else {
			resources[i].Folder = DefaultFolder
		}
	}
}
