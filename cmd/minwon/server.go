package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/minwon/pkg/minwon"
	"github.com/cognicore/minwon/pkg/minwon/ingest"
	"github.com/cognicore/minwon/pkg/minwon/internalerr"
	"github.com/cognicore/minwon/pkg/minwon/store"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
	shutdownTimeout    = 10 * time.Second
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the title and complaint HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			e := newServer(a)
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server_started", "addr", addr)
				errCh <- e.Start(addr)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.logger.Info("server_stopping")
			return e.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

type titleRequest struct {
	Text     string `json:"text"`
	Address  string `json:"address"`
	Category string `json:"category"`
}

type titleResponse struct {
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Tier         string `json:"tier"`
	ShortAddress string `json:"shortAddress"`
}

type verdictResponse struct {
	AgencyName string   `json:"agencyName"`
	AgencyCode string   `json:"agencyCode"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Sources    []string `json:"sources"`
}

type complaintResponse struct {
	ID           string           `json:"id"`
	Text         string           `json:"text"`
	Address      string           `json:"address"`
	Category     string           `json:"category"`
	Title        string           `json:"title"`
	Summary      string           `json:"summary"`
	Tier         string           `json:"tier"`
	ShortAddress string           `json:"shortAddress"`
	Verdict      *verdictResponse `json:"verdict,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func toComplaintResponse(c store.Complaint) complaintResponse {
	resp := complaintResponse{
		ID:           c.ID,
		Text:         c.Text,
		Address:      c.Address,
		Category:     c.Category,
		Title:        c.Title,
		Summary:      c.Summary,
		Tier:         c.Tier,
		ShortAddress: c.ShortAddress,
		CreatedAt:    c.CreatedAt,
	}
	if v := c.Verdict; v != nil {
		resp.Verdict = &verdictResponse{
			AgencyName: v.AgencyName,
			AgencyCode: v.AgencyCode,
			Confidence: v.Confidence,
			Reasoning:  v.Reasoning,
			Sources:    v.Sources,
		}
	}
	return resp
}

// handlers serves the HTTP API on top of the app.
type handlers struct {
	app *app
}

func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(recordRequests(a))

	h := &handlers{app: a}
	e.GET("/healthz", h.health)
	e.GET("/metrics", echo.WrapHandler(a.exporter.Handler()))

	api := e.Group("/api")
	api.POST("/titles", h.title)
	api.POST("/complaints", h.submit)
	api.GET("/complaints", h.recent)
	api.GET("/complaints/:id", h.get)
	return e
}

func recordRequests(a *app) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			code := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
			}
			a.exporter.RecordHTTPRequest(c.Path(), strconv.Itoa(code))
			return err
		}
	}
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) title(c echo.Context) error {
	var req titleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	composed := h.app.service.Title(ingest.Complaint{
		Text:     ingest.StripMarkup(req.Text),
		Address:  req.Address,
		Category: req.Category,
	})
	return c.JSON(http.StatusOK, titleResponse{
		Title:        composed.Title,
		Summary:      composed.Summary,
		Tier:         composed.Tier.String(),
		ShortAddress: composed.ShortAddress,
	})
}

func (h *handlers) submit(c echo.Context) error {
	var req titleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	rec, err := h.app.service.Submit(c.Request().Context(), minwon.SubmitRequest{
		Text:     req.Text,
		Address:  req.Address,
		Category: req.Category,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toComplaintResponse(rec))
}

func (h *handlers) recent(c echo.Context) error {
	limit := defaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxRecentLimit)
	}
	list, err := h.app.service.Recent(c.Request().Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}
	out := make([]complaintResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, toComplaintResponse(rec))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) get(c echo.Context) error {
	rec, err := h.app.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toComplaintResponse(rec))
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "complaint not found")
	case errors.Is(err, internalerr.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, internalerr.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
