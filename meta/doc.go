// Package meta records constraint descriptors for types and resolves them
// across ancestor chains.
//
// Annotations are explicit registration calls made once during setup:
//
//	store := meta.NewStore()
//	meta.Field[User](store, "Email", meta.Required(), meta.Email())
//	meta.Type[User](store, meta.SchemaOptions(schema.Options{AllowUnknown: schema.Bool(true)}))
//
// A Go struct's ancestor is its first embedded struct unless Store.Extend
// registers another one; declarative types (Named keys) only have the
// ancestors registered with Extend.
package meta
