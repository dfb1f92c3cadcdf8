package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/nodeboard/internal/dashboard"
	"github.com/muurk/nodeboard/internal/export"
	"github.com/muurk/nodeboard/internal/inventory"
	"github.com/muurk/nodeboard/internal/logging"
	"github.com/muurk/nodeboard/internal/version"
)

//go:embed templates/*.html static/*
var content embed.FS

// Config holds the web dashboard configuration
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration // Per-request backend timeout (0 = dashboard.DefaultRequestTimeout)
}

// PageData is the template input for the dashboard page
type PageData struct {
	Version   string
	Rows      []dashboard.Row
	Selected  string
	Loading   bool
	LoadError string
	Modal     dashboard.ModalView
	Fields    FormFields
}

// FormFields are the input names the edit form posts
type FormFields struct {
	Name        string
	Location    string
	Address     string
	CheckMethod string
}

var formFields = FormFields{
	Name:        inventory.FieldName,
	Location:    inventory.FieldLocation,
	Address:     inventory.FieldAddress,
	CheckMethod: inventory.FieldCheckMethod,
}

// Server is the browser front end
type Server struct {
	config     *Config
	session    *Session
	hub        *Hub
	templates  *template.Template
	handler    http.Handler
	httpServer *http.Server
}

// New creates a web dashboard backed by service
func New(config *Config, service dashboard.DeviceService, opts ...SessionOption) (*Server, error) {
	templates, err := template.ParseFS(content, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	staticFS, err := fs.Sub(content, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create static file system: %w", err)
	}

	hub := NewHub()
	opts = append([]SessionOption{WithChangeHook(hub.Refresh)}, opts...)

	s := &Server{
		config:    config,
		session:   NewSession(service, config.Timeout, opts...),
		hub:       hub,
		templates: templates,
	}
	s.handler = s.routes(staticFS)
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.handler }

// Session returns the dashboard session
func (s *Server) Session() *Session { return s.session }

func (s *Server) routes(staticFS fs.FS) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(s.templates)
	r.StaticFS("/static", http.FS(staticFS))

	r.GET("/", s.handleIndex)
	r.POST("/reload", s.action(func(*gin.Context) tea.Msg { return dashboard.LoadDevicesMsg{} }))
	r.POST("/nodes/add", s.action(func(*gin.Context) tea.Msg { return dashboard.AddNodeMsg{} }))
	r.POST("/modal/edit", s.action(func(*gin.Context) tea.Msg { return dashboard.RequestEditMsg{} }))
	r.POST("/modal/close", s.action(func(*gin.Context) tea.Msg { return dashboard.CloseModalMsg{} }))
	r.POST("/modal/finish", s.action(func(c *gin.Context) tea.Msg {
		return dashboard.FinishEditMsg{Form: deviceForm(c)}
	}))
	r.POST("/modal/submit", s.action(func(c *gin.Context) tea.Msg {
		form := deviceForm(c)
		if form == nil {
			form = url.Values{}
		}
		return dashboard.SubmitMsg{Form: form}
	}))
	r.POST("/devices/select", s.handleSelect)
	r.GET("/ws", gin.WrapH(s.hub))
	r.GET("/export.xlsx", s.handleExport(export.FormatXLSX))
	r.GET("/export.csv", s.handleExport(export.FormatCSV))
	return r
}

// Page builds the template data from the current session state
func (s *Server) Page() PageData {
	store := s.session.Store()
	data := PageData{
		Version:   version.Version,
		Rows:      store.Rows(),
		Loading:   store.Loading,
		LoadError: store.LoadError(),
		Modal:     store.Modal.View(),
		Fields:    formFields,
	}
	if store.Selected != nil {
		data.Selected = store.Selected.ID.String()
	}
	return data
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.Page())
}

func (s *Server) action(build func(*gin.Context) tea.Msg) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.session.Dispatch(build(c))
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (s *Server) handleSelect(c *gin.Context) {
	id, err := uuid.Parse(c.PostForm("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid device id")
		return
	}
	if !s.session.Select(id) {
		c.String(http.StatusNotFound, "device not found")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleExport(format export.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", format.ContentType())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format)))
		if err := export.Write(c.Writer, format, s.session.Devices()); err != nil {
			logging.Error("Export failed", zap.String("format", string(format)), zap.Error(err))
			c.Status(http.StatusInternalServerError)
		}
	}
}

// deviceForm returns the posted edit form, or nil when the request carried
// no device fields.
func deviceForm(c *gin.Context) url.Values {
	if err := c.Request.ParseForm(); err != nil {
		return nil
	}
	form := c.Request.PostForm
	if _, ok := form[inventory.FieldName]; !ok {
		return nil
	}
	return form
}

// Start loads the device list, serves HTTP and blocks until a shutdown
// signal or error
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logging.Info("Web dashboard listening",
		zap.String("url", "http://"+listener.Addr().String()),
		zap.String("version", version.Version),
	)
	s.session.Init()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping web dashboard...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown disconnects browsers and stops serving
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	err := s.httpServer.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.session.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, abandoning in-flight requests")
	}

	logging.Sync()
	return err
}
