package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 1 * time.Hour

// PaymentSessionPrefix is the prefix for cached payment correlation sessions.
const PaymentSessionPrefix = "paysession:"

// PaymentSessionTTL matches the slot lock TTL so a session never outlives
// the reservation it belongs to.
const PaymentSessionTTL = 10 * time.Minute
