package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pvelist/models"
	"pvelist/proxmox"
	"pvelist/views"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Task interface {
	Setup(db *gorm.DB, manager *Manager)
	Main(ctx context.Context)
	String() string
}

// Manager owns the cached inventory shared by the serve mode tasks and routes.
type Manager struct {
	resources   map[int]models.Resource
	refreshedAt time.Time
	session     *proxmox.Session
	db          *gorm.DB
	api         *proxmox.Client
	lock        sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	tasks       []Task
	changeChan  chan models.Resource
}

func NewManager(ctx context.Context, db *gorm.DB, api *proxmox.Client) *Manager {
	cCtx, cancel := context.WithCancel(ctx)
	return &Manager{
		resources:  make(map[int]models.Resource),
		db:         db,
		api:        api,
		ctx:        cCtx,
		cancel:     cancel,
		tasks:      []Task{},
		changeChan: make(chan models.Resource, 300),
	}
}

// API is the Proxmox client shared by every task.
func (m *Manager) API() *proxmox.Client {
	return m.api
}

// AddTask registers a new task with the Manager.
func (m *Manager) AddTask(task Task) {
	m.tasks = append(m.tasks, task)
}

// StartAll starts all periodic tasks managed by the Manager.
func (m *Manager) StartAll() {
	for _, task := range m.tasks {
		log.Infof("Starting task %s", task)
		task.Setup(m.db, m)
		go task.Main(m.ctx)
	}
}

// StopAll stops all periodic tasks.
func (m *Manager) StopAll() {
	m.cancel()
}

// Changes streams resources that were added or modified by SetResources or SetFolder.
func (m *Manager) Changes() <-chan models.Resource {
	return m.changeChan
}

func (m *Manager) Session() *proxmox.Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.session
}

func (m *Manager) SetSession(session *proxmox.Session) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.session = session
}

// notify must be called with the lock held. A full channel drops the change.
func (m *Manager) notify(resource models.Resource) {
	select {
	case m.changeChan <- resource:
	default:
		log.Debugf("Change channel full, dropping update for VMID %d", resource.VMID)
	}
}

// SetResources replaces the snapshot and returns how many records changed.
func (m *Manager) SetResources(resources []models.Resource) int {
	folders, err := models.LoadFolders(m.db)
	if err != nil {
		log.Errorf("Could not load folders: %v", err)
		folders = map[int]string{}
	}
	models.ApplyFolders(resources, folders)

	m.lock.Lock()
	defer m.lock.Unlock()

	next := make(map[int]models.Resource, len(resources))
	changed := 0
	for _, r := range resources {
		next[r.VMID] = r
		if old, exists := m.resources[r.VMID]; !exists || old != r {
			changed++
			m.notify(r)
		}
	}
	m.resources = next
	m.refreshedAt = time.Now()
	return changed
}

// GetResource retrieves the cached record of a VM ID.
func (m *Manager) GetResource(vmid int) (models.Resource, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	value, exists := m.resources[vmid]
	return value, exists
}

// ListResources returns the cached records sorted by VM ID.
func (m *Manager) ListResources() []models.Resource {
	m.lock.RLock()
	list := make([]models.Resource, 0, len(m.resources))
	for _, r := range m.resources {
		list = append(list, r)
	}
	m.lock.RUnlock()
	return views.SortByVMID(list)
}

// GetAllResources returns a copy of the snapshot and its refresh time.
func (m *Manager) GetAllResources() (map[int]models.Resource, time.Time) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	snapshot := make(map[int]models.Resource, len(m.resources))
	for vmid, r := range m.resources {
		snapshot[vmid] = r
	}
	return snapshot, m.refreshedAt
}

// SetFolder persists a folder assignment and updates the cached record.
func (m *Manager) SetFolder(vmid int, folder string) (*models.FolderAssignment, error) {
	assignment, err := models.SetFolder(m.db, vmid, folder)
	if err != nil {
		return nil, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if r, exists := m.resources[vmid]; exists && r.Folder != assignment.Folder {
		r.Folder = assignment.Folder
		m.resources[vmid] = r
		m.notify(r)
	}
	return assignment, nil
}

// PerformAction runs a power action on a cached resource with the current session.
func (m *Manager) PerformAction(ctx context.Context, vmid int, action string) (string, error) {
	resource, exists := m.GetResource(vmid)
	if !exists {
		return "", fmt.Errorf("VMID %d: %w", vmid, proxmox.ErrResourceNotFound)
	}
	return m.api.PerformAction(ctx, m.Session(), resource, action)
}
