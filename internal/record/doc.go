// Package record provides the JSON-like record model produced by the
// conversion engine and persisted by the store.
//
// A Record is a map from string keys to scalars, []any arrays and nested
// map[string]any objects. Values are addressed with a Path, parsed from
// dotted strings:
//
//	name          property
//	stats.hp      nested property
//	pos[1]        array position (also written pos.1)
//	tags[]        append onto the array at tags
//
// Setting a value creates intermediate objects and arrays as needed;
// arrays are padded with nil up to the written position.
package record
