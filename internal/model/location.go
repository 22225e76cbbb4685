package model

// City and Airport are static reference rows used for search
// auto-complete.  They are read-only at runtime.

type City struct {
	ID      uint64 // cities.id
	Name    string // cities.name
	Country string // cities.country
}

type Airport struct {
	ID      uint64 // airports.id
	Code    string // airports.code (IATA)
	Name    string // airports.name
	City    string // airports.city
	Country string // airports.country
}
