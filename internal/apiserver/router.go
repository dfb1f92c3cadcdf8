package apiserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/nodeboard/internal/deviceapi"
	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
)

// API serves the inventory over HTTP
type API struct {
	store *Store
}

// NewRouter builds the inventory HTTP handler:
//
//	GET  /healthz
//	GET  /devices
//	GET  /devices/:id
//	POST /devices
func NewRouter(store *Store) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := &API{store: store}
	r.GET(deviceapi.HealthPath, api.health)
	r.GET(deviceapi.DevicesPath, api.listDevices)
	r.GET(deviceapi.DevicesPath+"/:id", api.getDevice)
	r.POST(deviceapi.DevicesPath, api.upsertDevice)
	return r
}

func (a *API) health(c *gin.Context) {
	n, err := a.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "devices": n})
}

func (a *API) listDevices(c *gin.Context) {
	devices, err := a.store.List(c.Request.Context())
	if err != nil {
		logging.Error("Failed to list devices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (a *API) getDevice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid device id"})
		return
	}
	d, err := a.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (a *API) upsertDevice(c *gin.Context) {
	var d inventory.Device
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, created, err := a.store.Upsert(c.Request.Context(), d)
	if err != nil {
		logging.Error("Failed to store device", zap.String("id", d.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	logging.Info("Device stored",
		zap.String("id", stored.ID.String()),
		zap.String("name", stored.Name),
		zap.Bool("created", created),
	)
	c.JSON(status, stored)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("remote_addr", c.ClientIP()),
		)
	}
}
