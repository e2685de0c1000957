// Package redis connects the optional Redis backend used for shared rate
// limit counters. An empty REDIS_URL means Redis is not used.
package redis
