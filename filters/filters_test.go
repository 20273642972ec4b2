package filters

import (
	"testing"

	"pvelist/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inventory = []models.Resource{
	{Type: models.QEMU, VMID: 105, Status: "running", Node: "pve1", Folder: "web"},
	{Type: models.LXC, VMID: 200, Status: "stopped", Node: "pve2", Folder: models.DefaultFolder},
	{Type: models.QEMU, VMID: 300, Status: "stopped", Node: "pve1", Folder: "databases"},
}

func vmids(resources []models.Resource) []int {
	ids := []int{}
	for _, r := range resources {
		ids = append(ids, r.VMID)
	}
	return ids
}

func TestResourceFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter ResourceFilter
		want   []int
	}{
		{name: "empty filter", filter: ResourceFilter{}, want: []int{105, 200, 300}},
		{name: "type", filter: ResourceFilter{Types: []string{"lxc"}}, want: []int{200}},
		{name: "several types", filter: ResourceFilter{Types: []string{"QEMU", "lxc"}}, want: []int{105, 200, 300}},
		{name: "node", filter: ResourceFilter{Node: "pve1"}, want: []int{105, 300}},
		{name: "status", filter: ResourceFilter{Status: "Stopped"}, want: []int{200, 300}},
		{name: "folder", filter: ResourceFilter{Folder: "web"}, want: []int{105}},
		{name: "combined", filter: ResourceFilter{Node: "pve1", Status: "stopped"}, want: []int{300}},
		{name: "no match", filter: ResourceFilter{Types: []string{"storage"}}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vmids(tt.filter.Apply(inventory)))
		})
	}
}

func TestFolderFilter_Filter(t *testing.T) {
	db, err := models.InitTestDB()
	require.NoError(t, err)
	for vmid, folder := range map[int]string{300: "web", 100: "web", 200: "databases"} {
		_, err := models.SetFolder(db, vmid, folder)
		require.NoError(t, err)
	}

	var assignments []models.FolderAssignment
	filter := FolderFilter{Folder: "web"}
	require.NoError(t, filter.Filter(db).Find(&assignments).Error)
	require.Len(t, assignments, 2)
	assert.Equal(t, 100, assignments[0].VMID)
	assert.Equal(t, 300, assignments[1].VMID)

	assignments = nil
	filter = FolderFilter{VMIDs: []int{200, 300}}
	require.NoError(t, filter.Filter(db).Find(&assignments).Error)
	assert.Len(t, assignments, 2)
}
