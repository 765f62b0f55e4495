// Package settings stores the provider configuration as option/value pairs
// under the keys the forum plugin has always used.
//
// Stores are read on every login attempt. NewCachedStore wraps a slower
// store with a pkg/cache snapshot that is dropped on every Set.
//
// Snapshots are cached as they are. A shared cache such as cache.Redis keeps
// them as plain JSON, so pass WithoutSecrets there: the client secret and the
// API key are then left out of the snapshot and read from the store directly.
package settings
