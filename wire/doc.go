// Package wire adapts serialization libraries to the flat tagged layout of
// versioned envelopes.
//
// An envelope is written as one object: the fields of the version shape plus
// a marker key (usually "_version") holding the 1-based version in its
// canonical string form:
//
//	{"_version":"2","full_name":"Bob","email":"bob@example.com"}
//
// Formats only move bytes. Choosing the shape for a tag and migrating it
// are the job of packages envelope and versioned.
package wire
