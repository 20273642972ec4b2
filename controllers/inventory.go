package controllers

import (
	"context"
	"net/http"
	"time"

	"pvelist/proxmox"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InventoryTask keeps the manager snapshot in sync with the cluster.
type InventoryTask struct {
	name     string
	creds    proxmox.Credentials
	interval time.Duration
	manager  *Manager
}

// DefaultRefreshInterval replaces a non-positive refresh interval.
const DefaultRefreshInterval = time.Minute

func NewInventoryTask(name string, creds proxmox.Credentials, interval time.Duration) *InventoryTask {
	if interval <= 0 {
		log.Warnf("Task %s: refresh interval %v is not positive, using %v", name, interval, DefaultRefreshInterval)
		interval = DefaultRefreshInterval
	}
	return &InventoryTask{name: name, creds: creds, interval: interval}
}

func (t *InventoryTask) Setup(db *gorm.DB, manager *Manager) {
	t.manager = manager
}

func (t *InventoryTask) Main(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	// Trigger the task logic immediately
	if err := t.Refresh(ctx); err != nil {
		log.Errorf("Task %s: %v", t.name, err)
	}

	for {
		select {
		case <-ticker.C:
			if err := t.Refresh(ctx); err != nil {
				log.Errorf("Task %s: %v", t.name, err)
			}
		case <-ctx.Done():
			log.Infof("Task %s is stopping", t.name)
			return
		}
	}
}

func (t *InventoryTask) String() string {
	return t.name
}

func (t *InventoryTask) login(ctx context.Context) (*proxmox.Session, error) {
	session, err := t.manager.API().Login(ctx, t.creds)
	if err != nil {
		t.manager.SetSession(nil)
		return nil, err
	}
	t.manager.SetSession(session)
	return session, nil
}

// Refresh lists the guests and stores them in the manager. It logs in when
// there is no session yet and once more when the ticket was rejected.
func (t *InventoryTask) Refresh(ctx context.Context) error {
	session := t.manager.Session()
	if !session.Valid() {
		var err error
		if session, err = t.login(ctx); err != nil {
			return err
		}
	}

	resources, err := t.manager.API().ListVMsAndContainers(ctx, session)
	if proxmox.StatusCode(err) == http.StatusUnauthorized {
		log.Infof("Task %s: ticket rejected, logging in again", t.name)
		if session, err = t.login(ctx); err != nil {
			return err
		}
		resources, err = t.manager.API().ListVMsAndContainers(ctx, session)
	}
	if err != nil {
		return err
	}

	changed := t.manager.SetResources(resources)
	log.Infof("Task %s refreshed %d resources (%d changed)", t.name, len(resources), changed)
	return nil
}
