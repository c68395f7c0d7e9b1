// Package lines loads reference-line geometry from the formats surveys are
// published in: KML monitoring-line files, GeoJSON transect collections, and
// encoded polylines supplied inline in configuration.
package lines

// Filter restricts loading to lines whose first vertex falls inside the given
// ranges. A nil range leaves that axis unrestricted. Used to cut regional MOP
// files down to the surveyed reach.
type Filter struct {
	MinLat, MaxLat *float64
	MinLon, MaxLon *float64
}

func (f Filter) accepts(lon, lat float64) bool {
	if f.MinLat != nil && lat < *f.MinLat {
		return false
	}
	if f.MaxLat != nil && lat > *f.MaxLat {
		return false
	}
	if f.MinLon != nil && lon < *f.MinLon {
		return false
	}
	if f.MaxLon != nil && lon > *f.MaxLon {
		return false
	}
	return true
}
