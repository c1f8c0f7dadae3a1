// Package types defines the hotel CRM entities, their closed enumerations,
// request and filter shapes, the repository interfaces, and the standard
// errors shared by the storage, dispatch, and CLI layers.
//
// Enumeration values are the storage strings used by existing user
// databases (Italian vocabulary) and are never translated.
package types
