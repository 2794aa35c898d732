package export

import (
	"fmt"
	"net/url"
	"strings"

	"layover-route-service/internal/domain"
)

// GoogleMapsURL builds a google maps directions link for the planned route:
// base to base through every stop in visiting order.
func GoogleMapsURL(base domain.Location, tl *domain.RouteTimeline, profile string) string {
	params := url.Values{}
	params.Add("origin", fmt.Sprintf("%.6f,%.6f", base.Lat, base.Lon))
	params.Add("destination", fmt.Sprintf("%.6f,%.6f", base.Lat, base.Lon))

	if len(tl.Stops) > 0 {
		waypoints := make([]string, 0, len(tl.Stops))
		for _, s := range tl.Stops {
			waypoints = append(waypoints, fmt.Sprintf("%.6f,%.6f", s.Location.Lat, s.Location.Lon))
		}
		params.Add("waypoints", strings.Join(waypoints, "|"))
	}

	params.Add("travelmode", travelMode(profile))

	return "https://www.google.com/maps/dir/?api=1&" + params.Encode()
}

// travelMode maps routing profile names onto google maps travel modes.
func travelMode(profile string) string {
	switch {
	case strings.HasPrefix(profile, "foot"):
		return "walking"
	case strings.HasPrefix(profile, "cycling"):
		return "bicycling"
	default:
		return "driving"
	}
}
