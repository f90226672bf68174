// Package scenario holds cross-package tests that exercise solve() end to
// end, separate from the package-level unit tests next to each component.
// Coordinates below are real Las Vegas / Henderson locations (sourced from
// OpenStreetMap) rather than synthetic points on a grid; the scenario tests
// price travel between them with the haversine provider, not a road network.
package scenario

import "github.com/paiban/paiban/pkg/scheduler/model"

// Casinos double as plausible visitor start locations (depots).
var Casinos = map[string]model.Location{
	"wynn":     {Lat: 36.1263781, Lng: -115.1658180},
	"mgm":      {Lat: 36.1023654, Lng: -115.1688720},
	"bellagio": {Lat: 36.1126, Lng: -115.1767},
	"caesars":  {Lat: 36.1162, Lng: -115.1745},
}

// StripRestaurants double as plausible visit locations.
var StripRestaurants = map[string]model.Location{
	"hard_rock_cafe":  {Lat: 36.1041592, Lng: -115.1722166},
	"public_house":    {Lat: 36.1219193, Lng: -115.1689317},
	"yard_house":      {Lat: 36.1177147, Lng: -115.1691992},
	"gordon_ramsay":   {Lat: 36.1107195, Lng: -115.1720818},
	"pf_changs":       {Lat: 36.1103352, Lng: -115.1723830},
	"mon_ami_gabi":    {Lat: 36.1128554, Lng: -115.1724137},
	"oyster_bar":      {Lat: 36.1194951, Lng: -115.1715059},
	"ruths_chris":     {Lat: 36.1193113, Lng: -115.1722630},
	"bacchanal":       {Lat: 36.1159581, Lng: -115.1762929},
	"delmonico":       {Lat: 36.1231561, Lng: -115.1686955},
}

// eightToFive is the standard working window used across scenario fixtures,
// 08:00-17:00 expressed in seconds from midnight.
var eightToFive = model.Window{Start: 28800, End: 61200}
