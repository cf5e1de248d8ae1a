// Package converter maps a worker configuration onto the deployment API's
// worker metadata document.
//
// This package contains the functional core of workermeta. All functions are
// pure (no I/O, no side effects): the same inputs always produce structurally
// identical output, and the input is never mutated. Calls may run in parallel
// without coordination.
//
// # Functions
//
//   - Convert: build metadata, routes and script classification
//   - ConvertStrict: Validate, then Convert
//   - Validate: report bindings, routes and migration steps missing required fields
//   - MergeVars: overlay environment overrides on configured variables
//   - ResolveRoutes: flatten routes and the legacy route field
//   - DiffMigrations: select migration steps newer than an applied tag
//
// # Usage
//
// The imperative shell (internal/shell/loader, cmd/workermeta) loads the
// config and environment files, then hands plain values to Convert:
//
//	cfg, _ := loader.ParseConfig(path)
//	env, _ := loader.LoadEnv(dir)
//	result := converter.Convert(cfg, env, previousTag)
//	fmt.Printf("%d routes, %d bindings\n", result.RouteCount(), result.BindingCount())
package converter
