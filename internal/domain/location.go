package domain

// Immutable geographic point (latitude, longitude) in decimal degrees.
type Location struct {
	Lat float64
	Lon float64
}

// Return the point as [lon, lat] for external routing API compatibility.
func (l Location) LonLat() []float64 { return []float64{l.Lon, l.Lat} }
