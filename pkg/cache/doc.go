// Package cache provides the key-value caches used by the portal: parsed
// templates and translation tables live in a process-local Memory cache,
// while sessions can be kept either in Memory or in Redis when several
// instances run behind a load balancer.
//
// Both implementations satisfy Cache[V]. A zero TTL passed to Set means
// "use the configured default", a negative TTL means "never expire".
package cache
