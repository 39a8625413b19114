// Package store defines the persistence contract for profile records. Each
// record is keyed by the user ID the identity provider assigned, so a profile
// and its identity record always share one identifier.
package store
