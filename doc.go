// Package metaskema validates Go values and decoded documents against
// constraints declared per type.
//
// Constraints are recorded in a meta.Store with explicit annotation calls,
// merged across ancestor types by meta.Resolver, compiled into schemas by
// compiler.Compiler and run by the schema engine:
//
//	reg := metaskema.New()
//	meta.Field[User](reg.Store(), "Email", meta.Required(), meta.Email())
//	meta.Field[User](reg.Store(), "Age", meta.Integer(), meta.Min(18))
//
//	res := metaskema.Validate(reg, User{Email: "a@example.com", Age: 20})
//	if res.Error != nil {
//		for _, it := range res.Issues() {
//			fmt.Println(it.Path, it.Code, it.Message)
//		}
//	}
//
// Compiled schemas are cached per type. Annotating a type after it was
// compiled does not update the cached schema; pass NoCache() or call
// Compiler().Invalidate.
//
// Declarative types can be loaded from YAML or JSON with the manifest
// package and validated by name with meta.Named keys.
package metaskema
