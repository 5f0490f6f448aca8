// internal/dateplan/location.go

package dateplan

import (
	"math"
	"strings"

	"github.com/imadgeboyega/kiekky-couples/internal/profile"
)

// DistanceLimits caps how far the venue may be from the couple
type DistanceLimits struct {
	StandardKM int
	PremiumKM  int
}

// For picks the premium limit when either user is premium
func (d DistanceLimits) For(a, b *profile.User) int {
	if (a != nil && a.IsPremium) || (b != nil && b.IsPremium) {
		return d.PremiumKM
	}
	return d.StandardKM
}

// ResolveLocation picks where the couple should meet
func ResolveLocation(a, b *profile.User, limits DistanceLimits) Location {
	loc := Location{City: FallbackCity, LocationType: LocationUnknown, MaxDistanceKM: limits.For(a, b)}

	var la, lb profile.Location
	if a != nil {
		la = a.Location()
	}
	if b != nil {
		lb = b.Location()
	}
	cityA, cityB := strings.TrimSpace(la.City), strings.TrimSpace(lb.City)

	switch {
	case cityA != "" && strings.EqualFold(cityA, cityB):
		loc.City, loc.LocationType = cityA, LocationSameCity
		switch {
		case la.HasCoordinates() && lb.HasCoordinates():
			lat, lon := midpoint(*la.Latitude, *la.Longitude, *lb.Latitude, *lb.Longitude)
			loc.Latitude, loc.Longitude = &lat, &lon
			d := haversineDistance(*la.Latitude, *la.Longitude, *lb.Latitude, *lb.Longitude)
			loc.DistanceKM = &d
		case la.HasCoordinates():
			loc.Latitude, loc.Longitude = la.Latitude, la.Longitude
		case lb.HasCoordinates():
			loc.Latitude, loc.Longitude = lb.Latitude, lb.Longitude
		}
		if strings.EqualFold(la.Area, lb.Area) {
			loc.Area = la.Area
		}

	case cityA != "" && cityB != "":
		loc.LocationType = LocationDifferentCities
		if la.HasCoordinates() && lb.HasCoordinates() {
			d := haversineDistance(*la.Latitude, *la.Longitude, *lb.Latitude, *lb.Longitude)
			loc.DistanceKM = &d
		}

	case cityA != "":
		loc.City, loc.Area, loc.LocationType = cityA, la.Area, LocationSingleUser
		loc.Latitude, loc.Longitude = la.Latitude, la.Longitude

	case cityB != "":
		loc.City, loc.Area, loc.LocationType = cityB, lb.Area, LocationSingleUser
		loc.Latitude, loc.Longitude = lb.Latitude, lb.Longitude
	}
	return loc
}

func midpoint(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	return (lat1 + lat2) / 2, (lon1 + lon2) / 2
}

func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371 // km

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
