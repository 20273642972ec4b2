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

// ActionSubscriber runs power actions received on an MQTT topic.
type ActionSubscriber struct {
	client     mqtt.Client
	manager    *Manager
	topic      string
	timeout    time.Duration
	retryDelay time.Duration
	ctx        context.Context
}

// NewActionSubscriber creates a new ActionSubscriber listening on topic/actions.
// The subscription is made on every (re)connect since the session is clean.
func NewActionSubscriber(broker, topic, username, password string, timeout time.Duration) *ActionSubscriber {
	s := &ActionSubscriber{
		topic:      topic + "/actions",
		timeout:    timeout,
		retryDelay: 10 * time.Second,
		ctx:        context.Background(),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetClientID(fmt.Sprintf("pvelist-actions-%d", time.Now().Unix()))
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Warnf("Connection lost: %v", err)
	}
	opts.OnConnect = s.onConnect

	s.client = mqtt.NewClient(opts)
	return s
}

// onConnect subscribes to the action topic, retrying until it succeeds,
// the client disconnects or the subscriber stops.
func (s *ActionSubscriber) onConnect(client mqtt.Client) {
	log.Infof("Connected to broker, subscribing to %s", s.topic)
	for {
		token := client.Subscribe(s.topic, 1, s.onMessage)
		if token.Wait() && token.Error() == nil {
			log.Infof("Successfully subscribed to topic: %s", s.topic)
			return
		}
		log.Errorf("Failed to subscribe to topic: %v", token.Error())
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.retryDelay):
		}
		if !client.IsConnected() {
			return
		}
	}
}

func (s *ActionSubscriber) onMessage(client mqtt.Client, msg mqtt.Message) {
	upid, err := s.HandlePayload(s.ctx, msg.Payload())
	if err != nil {
		log.Errorf("Action from %s failed: %v", msg.Topic(), err)
		return
	}
	log.Infof("Action accepted, task %s", upid)
}

// Setup prepares the subscriber.
func (s *ActionSubscriber) Setup(db *gorm.DB, manager *Manager) {
	s.manager = manager
}

// String returns a string representation of the ActionSubscriber.
func (s *ActionSubscriber) String() string {
	return fmt.Sprintf("ActionSubscriber[topic=%s]", s.topic)
}

// HandlePayload decodes an ActionCommand and runs it. It returns the task id.
func (s *ActionSubscriber) HandlePayload(ctx context.Context, payload []byte) (string, error) {
	var command models.ActionCommand
	if err := json.Unmarshal(payload, &command); err != nil {
		return "", fmt.Errorf("invalid action payload: %w", err)
	}
	if command.VMID <= 0 || command.Action == "" {
		return "", fmt.Errorf("invalid action payload: vmid and action are required")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.manager.PerformAction(ctx, command.VMID, command.Action)
}

// Main connects and blocks until ctx is canceled. Subscribing is left to
// the on-connect handler.
func (s *ActionSubscriber) Main(ctx context.Context) {
	s.ctx = ctx
	for {
		token := s.client.Connect()
		if token.Wait() && token.Error() == nil {
			break
		}
		log.Errorf("Failed to connect to MQTT broker: %v", token.Error())
		log.Infof("Retrying connection in %v...", s.retryDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryDelay):
		}
	}

	<-ctx.Done()
	log.Infof("ActionSubscriber stopping...")
	if token := s.client.Unsubscribe(s.topic); token.Wait() && token.Error() != nil {
		log.Warnf("Failed to unsubscribe from topic: %v", token.Error())
	}
	s.client.Disconnect(250)
}
