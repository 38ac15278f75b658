package api

import "github.com/couchcryptid/geolookup/internal/domain"

// CoordsRequest is the query of GET /v1/coords.
type CoordsRequest struct {
	Service string `form:"service" binding:"required"`
	Address string `form:"address" binding:"required"`
}

// AddressRequest is the query of GET /v1/address.
type AddressRequest struct {
	Service   string   `form:"service" binding:"required"`
	Latitude  *float64 `form:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `form:"longitude" binding:"required,min=-180,max=180"`
}

// DistanceRequest is the query of GET /v1/distance. Unit defaults to miles.
type DistanceRequest struct {
	Lat1 *float64 `form:"lat1" binding:"required,min=-90,max=90"`
	Lon1 *float64 `form:"lon1" binding:"required,min=-180,max=180"`
	Lat2 *float64 `form:"lat2" binding:"required,min=-90,max=90"`
	Lon2 *float64 `form:"lon2" binding:"required,min=-180,max=180"`
	Unit string   `form:"unit"`
}

// PlaceRequest is the query of GET /v1/places.
type PlaceRequest struct {
	Name string `form:"name" binding:"required"`
}

// ServicesResponse lists the registered service names.
type ServicesResponse struct {
	Services []string `json:"services"`
}

// DistanceResponse is the distance between two points in Unit.
type DistanceResponse struct {
	Distance float64 `json:"distance"`
	Unit     string  `json:"unit"`
}

// PlaceResponse is a normalized place name. Countries is set when the name is a continent.
type PlaceResponse struct {
	Name      string   `json:"name"`
	Continent string   `json:"continent,omitempty"`
	Countries []string `json:"countries,omitempty"`
}

// ExifResponse carries the GPS coordinates of an image and, when a service
// was requested, their reverse geocoded location.
type ExifResponse struct {
	Coordinates domain.Coordinates `json:"coordinates"`
	Location    *domain.Location   `json:"location,omitempty"`
}
