package filters

import (
	"strings"

	"pvelist/models"

	"gorm.io/gorm"
)

// ResourceFilter narrows the cached inventory. Empty fields match everything.
type ResourceFilter struct {
	Types  []string `form:"type" json:"type"`
	Node   string   `form:"node" json:"node"`
	Status string   `form:"status" json:"status"`
	Folder string   `form:"folder" json:"folder"`
}

func (filter *ResourceFilter) Match(r models.Resource) bool {
	if len(filter.Types) > 0 {
		matched := false
		for _, t := range filter.Types {
			if strings.EqualFold(t, string(r.Type)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if filter.Node != "" && filter.Node != r.Node {
		return false
	}
	if filter.Status != "" && !strings.EqualFold(filter.Status, r.Status) {
		return false
	}
	if filter.Folder != "" && filter.Folder != r.Folder {
		return false
	}
	return true
}

// Apply keeps the matching resources in their input order.
func (filter *ResourceFilter) Apply(resources []models.Resource) []models.Resource {
	matched := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if filter.Match(r) {
			matched = append(matched, r)
		}
	}
	return matched
}

// FolderFilter narrows folder assignments stored in the database.
type FolderFilter struct {
	Folder string `form:"folder" json:"folder"`
	VMIDs  []int  `form:"vmids" json:"vmids"`
}

func (filter *FolderFilter) Filter(query *gorm.DB) *gorm.DB {
	query = query.Model(&models.FolderAssignment{})
	if filter.Folder != "" {
		query = query.Where("folder = ?", filter.Folder)
	}
	if len(filter.VMIDs) > 0 {
		query = query.Where("vmid IN ?", filter.VMIDs)
	}
	return query.Order("vmid ASC")
}
