package simulate

import "net/netip"

// LocalNetwork is the country reported for private and loopback sources.
const LocalNetwork = "Local Network"

// Geo is the location attached to a generated alert.
type Geo struct {
	Country string
	Lat     float64
	Lon     float64
}

// knownSources is the fixed set of external addresses the generator draws
// from, with a plausible location for each.
var knownSources = map[string]Geo{
	"103.45.22.1":   {Country: "China", Lat: 39.90, Lon: 116.40},
	"45.33.21.9":    {Country: "United States", Lat: 37.55, Lon: -121.99},
	"67.22.90.5":    {Country: "United States", Lat: 40.71, Lon: -74.01},
	"185.220.101.9": {Country: "Germany", Lat: 52.52, Lon: 13.40},
}

// Lookup returns the location of ip. Private and loopback addresses map to
// LocalNetwork at 0,0; unrecognized public addresses to "Unknown" at 0,0.
func Lookup(ip string) Geo {
	addr, err := netip.ParseAddr(ip)
	if err == nil && (addr.IsPrivate() || addr.IsLoopback()) {
		return Geo{Country: LocalNetwork}
	}
	if g, ok := knownSources[ip]; ok {
		return g
	}
	return Geo{Country: "Unknown"}
}
