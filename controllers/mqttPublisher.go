package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pvelist/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ResourcePublisher mirrors the inventory on retained MQTT topics, one per VMID.
type ResourcePublisher struct {
	name       string
	manager    *Manager
	client     mqtt.Client
	prefix     string
	brokerURL  string
	username   string
	password   string
	retryDelay time.Duration
}

func NewMQTTPublisherTask(name, brokerURL, topic, username, password string) *ResourcePublisher {
	return &ResourcePublisher{
		name:       name,
		prefix:     topic + "/resources",
		brokerURL:  brokerURL,
		username:   username,
		password:   password,
		retryDelay: 5 * time.Second,
	}
}

func (p *ResourcePublisher) Setup(db *gorm.DB, manager *Manager) {
	p.manager = manager
}

func (p *ResourcePublisher) String() string {
	return p.name
}

// ResourceTopic is the retained topic holding the latest state of vmid.
func (p *ResourcePublisher) ResourceTopic(vmid int) string {
	return fmt.Sprintf("%s/%d", p.prefix, vmid)
}

func (p *ResourcePublisher) Main(ctx context.Context) {
	if !p.connect(ctx) {
		return
	}
	defer p.client.Disconnect(250)

	// Late subscribers get the whole inventory from the retained messages.
	for _, resource := range p.manager.ListResources() {
		if err := p.publish(resource); err != nil {
			log.Errorf("Task %s: initial publish of VMID %d: %v", p.name, resource.VMID, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			log.Infof("Task %s is stopping", p.name)
			return
		case resource := <-p.manager.Changes():
			if err := p.publish(resource); err != nil {
				log.Errorf("Task %s: publish VMID %d: %v", p.name, resource.VMID, err)
			}
		}
	}
}

// connect retries until the broker accepts the connection or ctx is done.
func (p *ResourcePublisher) connect(ctx context.Context) bool {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.brokerURL)
	opts.SetUsername(p.username)
	opts.SetPassword(p.password)
	opts.SetClientID(fmt.Sprintf("pvelist-publisher-%d", time.Now().UnixNano()))
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	p.client = mqtt.NewClient(opts)

	for {
		token := p.client.Connect()
		if token.Wait() && token.Error() == nil {
			log.Infof("Task %s connected to %s", p.name, p.brokerURL)
			return true
		}
		log.Warnf("Task %s: broker unreachable (%v), retrying in %v", p.name, token.Error(), p.retryDelay)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.retryDelay):
		}
	}
}

// ResourcePayload is the JSON published for a resource.
func ResourcePayload(resource models.Resource) ([]byte, error) {
	return json.Marshal(struct {
		models.Resource
		PublishedAt time.Time `json:"published_at"`
	}{resource, time.Now().UTC()})
}

func (p *ResourcePublisher) publish(resource models.Resource) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	payload, err := ResourcePayload(resource)
	if err != nil {
		return err
	}

	topic := p.ResourceTopic(resource.VMID)
	token := p.client.Publish(topic, 1, true, payload)
	if token.Wait(); token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	log.Debugf("Published VMID %d to %s", resource.VMID, topic)
	return nil
}
