package proxmox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"pvelist/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	endpointClusterResources = "/cluster/resources"
	endpointNodes            = "/nodes"
)

// DecodeGuests keeps the qemu and lxc entries of a cluster listing, in input
// order. Other entries are dropped before their fields are decoded, so a
// storage or sdn record of an unexpected shape cannot fail the listing.
func DecodeGuests(data json.RawMessage) ([]models.Resource, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.New("data is not an array")
	}

	guests := make([]models.Resource, 0, len(entries))
	for i, entry := range entries {
		var kind models.Resource
		if err := json.Unmarshal(entry, &struct {
			Type *models.ResourceType `json:"type"`
		}{&kind.Type}); err != nil || !kind.IsGuest() {
			continue
		}

		var guest models.Resource
		if err := json.Unmarshal(entry, &guest); err != nil {
			return nil, errors.Wrapf(err, "entry %d (%s)", i, kind.Type)
		}
		guests = append(guests, guest)
	}
	return guests, nil
}

// ListVMsAndContainers fetches the cluster inventory and returns its VMs and
// containers. The type=vm query only narrows the server response, the type
// check done here is the one that counts.
func (c *Client) ListVMsAndContainers(ctx context.Context, session *Session) ([]models.Resource, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}
	log.Info("Fetching accessible resources...")

	data, err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: endpointClusterResources,
		query:    url.Values{"type": {"vm"}},
		session:  session,
	})
	if err != nil {
		return nil, err
	}

	guests, err := DecodeGuests(data)
	if err != nil {
		return nil, errors.WithMessagef(ErrDecode, "cluster resources: %v", err)
	}
	return guests, nil
}

// ListNodes returns the nodes of the cluster.
func (c *Client) ListNodes(ctx context.Context, session *Session) ([]models.Node, error) {
	if !session.Valid() {
		return nil, ErrInvalidSession
	}

	data, err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: endpointNodes,
		session:  session,
	})
	if err != nil {
		return nil, err
	}

	var nodes []models.Node
	if err := decodeArray(data, &nodes); err != nil {
		return nil, errors.WithMessagef(ErrDecode, "nodes: %v", err)
	}
	return nodes, nil
}

// decodeArray rejects anything but a JSON array before unmarshalling it.
func decodeArray(data json.RawMessage, target interface{}) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.New("data is not an array")
	}
	return json.Unmarshal(data, target)
}
