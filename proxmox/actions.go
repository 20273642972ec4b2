package proxmox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"pvelist/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var actions = map[string]bool{
	"start":    true,
	"stop":     true,
	"shutdown": true,
	"reboot":   true,
	"suspend":  true,
	"resume":   true,
}

// ValidAction reports whether action is a supported power action.
func ValidAction(action string) bool {
	return actions[action]
}

// FindResource returns the record of vmid in resources.
func FindResource(resources []models.Resource, vmid int) (models.Resource, error) {
	for _, r := range resources {
		if r.VMID == vmid {
			return r, nil
		}
	}
	return models.Resource{}, errors.WithMessagef(ErrResourceNotFound, "VMID %d", vmid)
}

// PerformAction sends a power action for resource and returns the task id (UPID).
func (c *Client) PerformAction(ctx context.Context, session *Session, resource models.Resource, action string) (string, error) {
	if !ValidAction(action) {
		return "", errors.WithMessagef(ErrUnknownAction, "%q", action)
	}
	if !resource.IsGuest() || resource.Node == "" || resource.VMID <= 0 {
		return "", errors.WithMessagef(ErrResourceNotFound, "VMID %d is incomplete", resource.VMID)
	}
	if !session.Valid() {
		return "", ErrInvalidSession
	}

	log.Infof("Attempting to send '%s' command for VMID %d (%s)...", action, resource.VMID, resource.Name)
	data, err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: fmt.Sprintf("/nodes/%s/%s/%d/status/%s", url.PathEscape(resource.Node), resource.Type, resource.VMID, action),
		form:     url.Values{},
		session:  session,
		route:    "/nodes/{node}/{type}/{vmid}/status/{action}",
	})
	if err != nil {
		return "", err
	}

	var upid string
	if err := json.Unmarshal(data, &upid); err != nil {
		return "", errors.WithMessagef(ErrDecode, "task id: %v", err)
	}
	return upid, nil
}
