// Package api serves the qlin diagnostics HTTP API: the capability
// snapshot and a selection endpoint, for operators debugging why a
// deployment picked (or refused) a kernel.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/quantfold/qlin/internal/kernels"
	"github.com/quantfold/qlin/internal/selector"
)

type Server struct {
	snap kernels.Snapshot
	sel  *selector.Selector
}

func NewServer(snap kernels.Snapshot, sel *selector.Selector) *Server {
	if sel == nil {
		sel = selector.New(nil)
	}
	return &Server{snap: snap, sel: sel}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/kernels", s.handleKernels)
	e.POST("/v1/select", s.handleSelect)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKernels(c *echo.Context) error {
	return c.JSON(http.StatusOK, NewKernelReport(s.snap))
}

func (s *Server) handleSelect(c *echo.Context) error {
	req, err := decodeJSON[SelectRequest](c.Request().Body)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}
	cfg, pref := req.Config()
	backend, err := s.sel.Select(s.snap, cfg, pref)
	switch {
	case errors.Is(err, selector.ErrInvalidArgument):
		return writeError(c, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, selector.ErrKernelUnavailable):
		return writeError(c, http.StatusConflict, "kernel_unavailable", err.Error())
	case err != nil:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return c.JSON(http.StatusOK, SelectResponse{Backend: string(backend)})
}

func decodeJSON[T any](r io.Reader) (*T, error) {
	var v T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &v, nil
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": msg,
		},
	})
}
