package models

import (
	"time"
)

// Location is a GeoJSON point as stored in MongoDB: coordinates are
// [longitude, latitude].
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
}

func NewLocation(lat, lng float64) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{lng, lat},
	}
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) >= 2 {
		return l.Coordinates[1]
	}
	return 0
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) >= 1 {
		return l.Coordinates[0]
	}
	return 0
}

// IsValid reports whether the point carries plausible coordinates.
func (l *Location) IsValid() bool {
	if l == nil || len(l.Coordinates) != 2 {
		return false
	}
	lat, lng := l.Latitude(), l.Longitude()
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Route is the two-point path of a trip, derived at creation when both
// endpoints are geocoded and distinct.
type Route struct {
	Origin      Location `json:"origin" bson:"origin"`
	Destination Location `json:"destination" bson:"destination"`
	DistanceKM  float64  `json:"distance_km" bson:"distance_km"`
}
