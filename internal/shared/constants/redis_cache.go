package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTL values.
// Pattern: skyfare:{module}:{operation}:{identifier}:{params?}

// Static data (rarely changes)
const (
	TTL_FLIGHT_DETAIL = 5 * time.Minute
	TTL_FLIGHT_LIST   = 1 * time.Minute
	TTL_FACILITIES    = 1 * time.Hour
)

// Seat availability is contended and short-lived; holds expire in seconds.
const (
	TTL_FREE_SEATS  = 10 * time.Second
	TTL_FLIGHT_STAT = 30 * time.Second
)

const CACHE_PREFIX = "skyfare"

const (
	CACHE_KEY_FLIGHT_LIST   = CACHE_PREFIX + ":flights:list"
	CACHE_KEY_FLIGHT_DETAIL = CACHE_PREFIX + ":flights:detail:"   // + flight-id
	CACHE_KEY_FREE_SEATS    = CACHE_PREFIX + ":tickets:free:"     // + flight-id:class
	CACHE_KEY_FLIGHT_STATS  = CACHE_PREFIX + ":flights:stats:"    // + flight-id
	CACHE_KEY_FACILITIES    = CACHE_PREFIX + ":facilities:list"
)

// BuildFreeSeatsKey builds the cache key for the free-seat set of one
// flight/cabin-class pair.
func BuildFreeSeatsKey(flightID, cabinClass string) string {
	return fmt.Sprintf("%s%s:%s", CACHE_KEY_FREE_SEATS, flightID, cabinClass)
}

// BuildFlightDetailKey builds the cache key for one flight's detail view.
func BuildFlightDetailKey(flightID string) string {
	return CACHE_KEY_FLIGHT_DETAIL + flightID
}

// BuildFlightStatsKey builds the cache key for one flight's operational stats.
func BuildFlightStatsKey(flightID string) string {
	return CACHE_KEY_FLIGHT_STATS + flightID
}
