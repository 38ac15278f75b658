// Package api serves lookups, distance calculations, and spatial query
// rewriting over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/geolookup/internal/adapter/exifimage"
	"github.com/couchcryptid/geolookup/internal/adapter/postgres"
	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/couchcryptid/geolookup/internal/locatable"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest = "invalid request"
	msgNotFound       = "no match found"
	msgNoStore        = "no query store configured"
	maxImageSize      = 16 << 20
)

// Lookup runs geocoding operations.
type Lookup interface {
	Run(ctx context.Context, op domain.OperationKind, service string, q domain.Query) (*domain.Location, error)
	Services() []string
}

// Models geocodes and rewrites queries for bound models.
type Models interface {
	Binding(model string) (locatable.BindingConfig, bool)
	Geocode(ctx context.Context, e locatable.Entity) (*domain.Location, error)
	RewriteFindParameters(model, findType string, opts locatable.Options) locatable.Options
}

// Finder executes finds on bound models.
type Finder interface {
	Find(ctx context.Context, model, findType string, opts locatable.Options) (locatable.Result, error)
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler serves the /v1 routes.
type Handler struct {
	lookup Lookup
	models Models
	finder Finder
	logger *slog.Logger
}

// NewHandler creates a Handler. finder may be nil when no store is
// configured; find requests then fail with 503.
func NewHandler(lookup Lookup, models Models, finder Finder, logger *slog.Logger) *Handler {
	return &Handler{lookup: lookup, models: models, finder: finder, logger: logger}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/services", h.Services)
	r.GET("/coords", h.Coords)
	r.GET("/address", h.Address)
	r.GET("/distance", h.Distance)
	r.GET("/places", h.Place)
	r.POST("/exif", h.Exif)
	r.POST("/models/:model/geocode", h.Geocode)
	r.POST("/models/:model/rewrite/:type", h.Rewrite)
	r.POST("/models/:model/find/:type", h.Find)
}

// NewRouter returns a gin engine serving h under /v1.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.logger))
	h.Register(r.Group("/v1"))
	return r
}

// Services lists the registered service names.
// GET /v1/services
func (h *Handler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, ServicesResponse{Services: h.lookup.Services()})
}

// Coords resolves an address.
// GET /v1/coords?service=osm&address=...
func (h *Handler) Coords(c *gin.Context) {
	var req CoordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	loc, err := h.lookup.Run(c.Request.Context(), domain.OpCoords, req.Service, domain.Query{Address: req.Address})
	h.writeLocation(c, loc, err)
}

// Address reverse geocodes a point.
// GET /v1/address?service=osm&latitude=..&longitude=..
func (h *Handler) Address(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	loc, err := h.lookup.Run(c.Request.Context(), domain.OpAddress, req.Service, domain.Query{
		Point: &domain.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude},
	})
	h.writeLocation(c, loc, err)
}

// Distance measures the great-circle distance between two points.
// GET /v1/distance?lat1=..&lon1=..&lat2=..&lon2=..&unit=K
func (h *Handler) Distance(c *gin.Context) {
	var req DistanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	unit := req.Unit
	if unit == "" {
		unit = "M"
	}
	from := domain.Coordinates{Latitude: *req.Lat1, Longitude: *req.Lon1}
	to := domain.Coordinates{Latitude: *req.Lat2, Longitude: *req.Lon2}
	c.JSON(http.StatusOK, DistanceResponse{Distance: domain.Distance(from, to, unit), Unit: unit})
}

// Place normalizes a place name and finds its continent.
// GET /v1/places?name=USA
func (h *Handler) Place(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	name := domain.NormalizePlace(req.Name)
	resp := PlaceResponse{Name: name}
	if continent, countries, ok := domain.ContinentOf(name); ok {
		resp.Continent = continent
		resp.Countries = countries
	}
	c.JSON(http.StatusOK, resp)
}

// Exif reads GPS coordinates from an uploaded image and, when a service
// is given, reverse geocodes them.
// POST /v1/exif?service=osm (multipart field "image")
func (h *Handler) Exif(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, err)
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "image too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	coords, err := exifimage.Coordinates(f)
	switch {
	case errors.Is(err, exifimage.ErrNoGPS):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "unreadable image", Details: err.Error()})
		return
	}

	resp := ExifResponse{Coordinates: coords}
	if service := c.Query("service"); service != "" {
		loc, err := h.lookup.Run(c.Request.Context(), domain.OpAddress, service, domain.Query{Point: &coords})
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp.Location = loc
	}
	c.JSON(http.StatusOK, resp)
}

// Geocode formats a record of a bound model into an address and looks it up.
// POST /v1/models/:model/geocode
func (h *Handler) Geocode(c *gin.Context) {
	model := c.Param("model")
	if _, ok := h.models.Binding(model); !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "model is not bound", Details: model})
		return
	}
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, err)
		return
	}
	loc, err := h.models.Geocode(c.Request.Context(), locatable.Entity{Model: model, Data: data})
	h.writeLocation(c, loc, err)
}

// Rewrite returns the canonical form of find options.
// POST /v1/models/:model/rewrite/:type
func (h *Handler) Rewrite(c *gin.Context) {
	opts, ok := bindOptions(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.models.RewriteFindParameters(c.Param("model"), c.Param("type"), opts))
}

// Find runs a rewritten find against the store.
// POST /v1/models/:model/find/:type
func (h *Handler) Find(c *gin.Context) {
	if h.finder == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: msgNoStore})
		return
	}
	opts, ok := bindOptions(c)
	if !ok {
		return
	}
	res, err := h.finder.Find(c.Request.Context(), c.Param("model"), c.Param("type"), opts)
	if err != nil {
		if errors.Is(err, postgres.ErrUnsupportedCondition) {
			badRequest(c, err)
			return
		}
		h.logger.Error("find failed", "model", c.Param("model"), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "find failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func bindOptions(c *gin.Context) (locatable.Options, bool) {
	opts := locatable.Options{}
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return nil, false
	}
	return opts, true
}

func (h *Handler) writeLocation(c *gin.Context, loc *domain.Location, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	if loc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgNotFound})
		return
	}
	c.JSON(http.StatusOK, loc)
}

// writeError maps lookup errors to status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownService):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnsupportedOperation), errors.Is(err, domain.ErrInvalidService):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Warn("upstream lookup failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "lookup failed", Details: err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest, Details: err.Error()})
}
