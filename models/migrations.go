package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LegacyImport records a folder file that was already imported.
type LegacyImport struct {
	BaseModel
	Path     string `gorm:"uniqueIndex;not null" json:"path"`
	Imported int    `json:"imported"`
}

// ImportLegacyFolders copies the folder map of a legacy vm_folders.json file
// ({"<vmid>": "<folder>"}) into the folder table, once per path. A missing file
// is not an error. Entries already present in the database win over the file.
func ImportLegacyFolders(db *gorm.DB, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	var done int64
	if err := db.Model(&LegacyImport{}).Where("path = ?", path).Count(&done).Error; err != nil {
		return 0, fmt.Errorf("failed to check legacy imports: %w", err)
	}
	if done > 0 {
		log.Debugf("Folder file %s already imported", path)
		return 0, nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debugf("Folder configuration file (%s) not found. Starting fresh.", path)
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(content, &raw); err != nil {
		log.Warnf("Could not parse %s. Starting with no folder assignments.", path)
		return 0, nil
	}

	existing, err := LoadFolders(db)
	if err != nil {
		return 0, err
	}

	imported := 0
	for key, folder := range raw {
		vmid, err := strconv.Atoi(key)
		if err != nil {
			log.Warnf("Skipping invalid entry in folder file: %s", key)
			continue
		}
		if _, ok := existing[vmid]; ok {
			continue
		}
		if _, err := SetFolder(db, vmid, folder); err != nil {
			log.Warnf("Skipping folder entry %s: %v", key, err)
			continue
		}
		imported++
	}

	if err := db.Create(&LegacyImport{Path: path, Imported: imported}).Error; err != nil {
		return imported, fmt.Errorf("failed to record import of %s: %w", path, err)
	}
	if imported > 0 {
		log.Infof("Imported %d VM folder assignments from %s", imported, path)
	} else {
		log.Debugf("No VM folder assignments to import from %s", path)
	}
	return imported, nil
}
