package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's session
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// OfferingAvailabilityKey returns the cache key holding the last published
// seat counts of an offering. Display only.
func (r *CacheKeyStruct) OfferingAvailabilityKey(offeringID int) string {
	return fmt.Sprintf("offering:%d:availability", offeringID)
}

// OfferingEventsChannel returns the Redis PubSub channel for an offering's live updates
func (r *CacheKeyStruct) OfferingEventsChannel(offeringID int) string {
	return fmt.Sprintf("offering:%d:events", offeringID)
}

// RateLimitKey returns the counter key of one client in one fixed window.
func (r *CacheKeyStruct) RateLimitKey(scope, client string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, client, window)
}

var CacheKey = NewCacheKeyStruct()
