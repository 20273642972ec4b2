package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFolder_Validation(t *testing.T) {
	db, err := InitTestDB()
	require.NoError(t, err)

	tests := []struct {
		name   string
		vmid   int
		folder string
	}{
		{name: "zero vmid", vmid: 0, folder: "web"},
		{name: "negative vmid", vmid: -4, folder: "web"},
		{name: "empty folder", vmid: 100, folder: ""},
		{name: "blank folder", vmid: 100, folder: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignment, err := SetFolder(db, tt.vmid, tt.folder)
			assert.ErrorIs(t, err, ErrInvalidFolder)
			assert.Nil(t, assignment)
		})
	}

	folders, err := LoadFolders(db)
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestSetFolder_UpsertsAndTrims(t *testing.T) {
	db, err := InitTestDB()
	require.NoError(t, err)

	_, err = SetFolder(db, 101, "  databases ")
	require.NoError(t, err)
	_, err = SetFolder(db, 102, "web")
	require.NoError(t, err)
	_, err = SetFolder(db, 101, "backups")
	require.NoError(t, err)

	folders, err := LoadFolders(db)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{101: "backups", 102: "web"}, folders)

	var count int64
	require.NoError(t, db.Model(&FolderAssignment{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestApplyFolders(t *testing.T) {
	resources := []Resource{
		{Type: QEMU, VMID: 100, Name: "web-1"},
		{Type: LXC, VMID: 200, Name: "cache"},
	}

	ApplyFolders(resources, map[int]string{200: "infra"})

	assert.Equal(t, DefaultFolder, resources[0].Folder)
	assert.Equal(t, "infra", resources[1].Folder)
}

func TestImportLegacyFolders(t *testing.T) {
	db, err := InitTestDB()
	require.NoError(t, err)

	_, err = SetFolder(db, 300, "kept")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vm_folders.json")
	content := `{"100": "web", "abc": "broken", "300": "overwritten", "400": "  "}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	imported, err := ImportLegacyFolders(db, path)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	folders, err := LoadFolders(db)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{100: "web", 300: "kept"}, folders)
}

func TestImportLegacyFolders_OncePerFile(t *testing.T) {
	db, err := InitTestDB()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vm_folders.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"100": "web"}`), 0o600))

	imported, err := ImportLegacyFolders(db, path)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	require.NoError(t, os.WriteFile(path, []byte(`{"100": "web", "200": "dns"}`), 0o600))
	imported, err = ImportLegacyFolders(db, path)
	require.NoError(t, err)
	assert.Zero(t, imported)

	folders, err := LoadFolders(db)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{100: "web"}, folders)
}

func TestImportLegacyFolders_MissingOrBrokenFile(t *testing.T) {
	db, err := InitTestDB()
	require.NoError(t, err)

	imported, err := ImportLegacyFolders(db, filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, err)
	assert.Zero(t, imported)

	broken := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o600))

	imported, err = ImportLegacyFolders(db, broken)
	assert.NoError(t, err)
	assert.Zero(t, imported)

	imported, err = ImportLegacyFolders(db, "")
	assert.NoError(t, err)
	assert.Zero(t, imported)
}
