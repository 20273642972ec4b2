package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pvelist/controllers"
	"pvelist/models"
	"pvelist/routers"

	limit "github.com/aviddiviner/gin-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "keep the inventory in memory and serve it over HTTP",
		Long: `serve refreshes the inventory periodically, exposes it under /api/v1,
publishes changes to MQTT and accepts power actions from MQTT when MQTT_BROKER is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	creds, err := a.credentials()
	if err != nil {
		return err
	}

	db, err := models.SetupModels(a.conf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := controllers.NewManager(ctx, db, a.client())

	// Register tasks
	manager.AddTask(controllers.NewInventoryTask("InventoryTask", creds, a.conf.RefreshInterval()))
	if a.conf.MQTTBroker != "" {
		manager.AddTask(controllers.NewMQTTPublisherTask("MQTTPublisherTask", a.conf.MQTTBroker, a.conf.MQTTTopic, a.conf.MQTTUser, a.conf.MQTTPassword))
		manager.AddTask(controllers.NewActionSubscriber(a.conf.MQTTBroker, a.conf.MQTTTopic, a.conf.MQTTUser, a.conf.MQTTPassword, a.conf.Timeout()))
	}

	// Create router
	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	r.Use(routers.Dependencies(db, manager))

	// Endpoints configuration
	api := r.Group("/api/v1").Use(limit.MaxAllowed(30))
	{
		routers.GetEndpoints(api)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%v", a.conf.GinPort),
		Handler: r,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	log.Infof("Serving inventory of %s on :%v", a.conf.PVEHost, a.conf.GinPort)
	manager.StartAll()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	manager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warnf("HTTP server shutdown: %v", shutdownErr)
	}
	return err
}
