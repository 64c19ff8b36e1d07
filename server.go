package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"i4.energy/across/gsmlink/at"
	"i4.energy/across/gsmlink/modem"
)

// Device is the part of the modem the HTTP facade drives.
type Device interface {
	State() modem.ConnectionState
	Identity() (modem.DeviceInfo, bool)
	DeviceInfo(ctx context.Context) (modem.DeviceInfo, error)
	Status(ctx context.Context) (string, error)
	SignalStrength(ctx context.Context) (string, error)
	Request(ctx context.Context, url string, opts modem.RequestOptions) (*modem.Response, error)
}

// Server exposes the modem over HTTP.
type Server struct {
	Logger *slog.Logger
	Device Device
}

type errorResponse struct {
	Message string `json:"message"`
}

type valueResponse struct {
	Value string `json:"value"`
}

type httpRequest struct {
	URL         string `json:"url" binding:"required"`
	Method      string `json:"method"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

type httpResponse struct {
	StatusCode    int    `json:"statusCode"`
	ContentLength int    `json:"contentLength"`
	Body          string `json:"body"`
}

// Router builds the gin engine serving the modem routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)
	router.GET("/device", s.handleDevice)
	router.GET("/status", s.handleValue("registration status", s.Device.Status))
	router.GET("/signal", s.handleValue("signal strength", s.Device.SignalStrength))
	router.POST("/http", s.handleHTTP)
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("Request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) sendError(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorResponse{Message: err.Error()})
}

// statusFor maps modem errors onto HTTP status codes.
func statusFor(err error) int {
	var herr *modem.HTTPSessionError
	switch {
	case errors.Is(err, modem.ErrBusy), errors.Is(err, modem.ErrHTTPSessionActive):
		return http.StatusConflict
	case errors.Is(err, modem.ErrNotInitialized), errors.Is(err, modem.ErrAlreadyClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, modem.ErrMissingBody), errors.Is(err, at.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.As(err, &herr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	state := s.Device.State()
	code := http.StatusOK
	if state != modem.Connected {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"state": state.String()})
}

func (s *Server) handleDevice(c *gin.Context) {
	if info, ok := s.Device.Identity(); ok {
		c.JSON(http.StatusOK, info)
		return
	}
	info, err := s.Device.DeviceInfo(c.Request.Context())
	if err != nil {
		s.Logger.Error("Failed to read device info", "error", err)
		s.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleValue(name string, query func(context.Context) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := query(c.Request.Context())
		if err != nil {
			s.Logger.Error("Failed to read "+name, "error", err)
			s.sendError(c, err)
			return
		}
		c.JSON(http.StatusOK, valueResponse{Value: value})
	}
}

func (s *Server) handleHTTP(c *gin.Context) {
	var req httpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	var method modem.Method
	switch strings.ToUpper(req.Method) {
	case "", "GET":
		method = modem.MethodGet
	case "POST":
		method = modem.MethodPost
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Message: "unsupported method " + req.Method})
		return
	}

	resp, err := s.Device.Request(c.Request.Context(), req.URL, modem.RequestOptions{
		Method:      method,
		ContentType: req.ContentType,
		Data:        []byte(req.Data),
	})
	if err != nil {
		s.Logger.Error("HTTP request through modem failed", "error", err, "url", req.URL)
		s.sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpResponse{
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		Body:          string(resp.Body),
	})
}
