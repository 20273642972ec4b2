package routers

import (
	"errors"
	"net/http"
	"strconv"

	"pvelist/controllers"
	"pvelist/filters"
	"pvelist/models"
	"pvelist/proxmox"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func vmidParam(c *gin.Context) (int, bool) {
	vmid, err := strconv.Atoi(c.Param("vmid"))
	if err != nil || vmid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vmid must be a positive integer"})
		return 0, false
	}
	return vmid, true
}

// ListResources list the cached VMs and containers
// @Summary List VMs and containers sorted by VMID
// @Produce json
// @Tags Resources
// @Param type query []string false "qemu or lxc"
// @Param node query string false "node name"
// @Param status query string false "running, stopped..."
// @Param folder query string false "folder name"
// @Success 200 {object} object{items=[]models.Resource,total=int}
// @Failure 400 {object} object{error=string}
// @Router /resources [get]
func ListResources(c *gin.Context) {
	manager := c.MustGet("manager").(*controllers.Manager)

	var resourceFilter filters.ResourceFilter
	if err := c.ShouldBindQuery(&resourceFilter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := resourceFilter.Apply(manager.ListResources())
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetResource returns a single cached resource
// @Router /resources/{vmid} [get]
func GetResource(c *gin.Context) {
	manager := c.MustGet("manager").(*controllers.Manager)
	vmid, ok := vmidParam(c)
	if !ok {
		return
	}

	resource, exists := manager.GetResource(vmid)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	c.JSON(http.StatusOK, resource)
}

type folderRequest struct {
	Folder string `json:"folder" binding:"required"`
}

// SetResourceFolder assigns a local folder to a VMID
// @Router /resources/{vmid}/folder [put]
func SetResourceFolder(c *gin.Context) {
	manager := c.MustGet("manager").(*controllers.Manager)
	vmid, ok := vmidParam(c)
	if !ok {
		return
	}

	var body folderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := manager.SetFolder(vmid, body.Folder)
	if errors.Is(err, models.ErrInvalidFolder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// PerformResourceAction sends a power action to a guest
// @Router /resources/{vmid}/actions/{action} [post]
func PerformResourceAction(c *gin.Context) {
	manager := c.MustGet("manager").(*controllers.Manager)
	vmid, ok := vmidParam(c)
	if !ok {
		return
	}

	upid, err := manager.PerformAction(c.Request.Context(), vmid, c.Param("action"))
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"task": upid})
	case errors.Is(err, proxmox.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, proxmox.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, proxmox.ErrInvalidSession):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

// ListFolders list the stored folder assignments
// @Router /folders [get]
func ListFolders(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var folderFilter filters.FolderFilter
	if err := c.ShouldBindQuery(&folderFilter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var assignments []models.FolderAssignment
	if err := folderFilter.Filter(db).Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": assignments})
}
