// Package family defines the genealogy data model shared by every other
// package: [Member], [Link] and the [Data] snapshot.
//
// # Identifiers
//
// Member nodes are named "mem_<row>" after the data row they came from.
// Union nodes represent a parent couple and are named "u_<a>_<b>" where a
// and b are the sorted parent ids; a single known parent is paired with
// "unknown". See [UnionID].
//
// # Field aliases
//
// Member data may come from English or German exports. Each logical
// attribute is a [Field] with an ordered alias list; [Field.Resolve] walks
// the aliases and applies the field's default and SkipEmpty policy:
//
//	name := family.FieldName.Resolve(m)       // "?" when missing
//	born := family.FieldBirthDate.Resolve(m)  // "?" when missing
//	died := family.FieldDeathDate.Resolve(m)  // "" when missing
//
// # Years
//
// [ParseYear] turns a free-text date into a sortable year by taking the
// first number above 31. It is a layout tie-breaker, not display data.
package family
