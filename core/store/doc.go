// Package store holds the persistent asset and observation tables.
//
// Assets are unique on NameKey. CreateOrFetch inserts with ON CONFLICT DO
// NOTHING and re-reads the row when another writer got there first, so two
// runs racing on the same new host end up sharing one asset.
//
// Observations are append-only and owned by their asset: the foreign key
// cascades on delete and DeleteAsset removes children explicitly as well.
package store
