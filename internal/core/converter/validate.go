package converter

import (
	"fmt"

	"github.com/artpar/workermeta/internal/core/metadata"
	"github.com/artpar/workermeta/internal/core/wrangler"
)

// =============================================================================
// Validation
// =============================================================================

// requiredFields names the field each binding type cannot do without, beyond
// its name. Types absent from the map only need a name.
var requiredFields = map[metadata.BindingType]struct {
	Field string
	Value func(b metadata.Binding) string
}{
	metadata.BindingTypeKVNamespace:     {"id", func(b metadata.Binding) string { return b.NamespaceID }},
	metadata.BindingTypeR2Bucket:        {"bucket_name", func(b metadata.Binding) string { return b.BucketName }},
	metadata.BindingTypeD1:              {"database_id", func(b metadata.Binding) string { return b.ID }},
	metadata.BindingTypeDurableObject:   {"class_name", func(b metadata.Binding) string { return b.ClassName }},
	metadata.BindingTypeService:         {"service", func(b metadata.Binding) string { return b.Service }},
	metadata.BindingTypeQueue:           {"queue", func(b metadata.Binding) string { return b.QueueName }},
	metadata.BindingTypeVectorize:       {"index_name", func(b metadata.Binding) string { return b.IndexName }},
	metadata.BindingTypeHyperdrive:      {"id", func(b metadata.Binding) string { return b.ID }},
	metadata.BindingTypeMTLSCertificate: {"certificate_id", func(b metadata.Binding) string { return b.CertificateID }},
}

// Validate reports every binding, route and migration step in cfg that is
// missing a required field. Convert itself accepts such input and passes the
// empty values through; Validate is the opt-in strict check.
//
// Returned errors are *BindingError wrapping ErrInvalidBinding,
// ErrInvalidRoute or ErrInvalidMigration.
func Validate(cfg *wrangler.Config) []error {
	if cfg == nil {
		return nil
	}

	var errs []error
	errs = append(errs, validateBindings(cfg)...)
	errs = append(errs, validateRoutes(cfg)...)
	errs = append(errs, validateMigrations(cfg.Migrations)...)
	return errs
}

func validateBindings(cfg *wrangler.Config) []error {
	var errs []error

	for _, src := range bindingTable {
		for i, b := range src.Collect(cfg) {
			field := fmt.Sprintf("%s[%d]", src.Path, i)
			if src.Singleton {
				field = src.Path
			}

			if b.IsRaw() {
				if b.Name == "" || b.Type == "" {
					errs = append(errs, NewBindingError(field, "raw binding must have name and type", ErrInvalidBinding))
				}
				continue
			}

			if b.Name == "" {
				errs = append(errs, NewBindingError(field, "binding name is required", ErrInvalidBinding))
			}
			if req, ok := requiredFields[b.Type]; ok && req.Value(b) == "" {
				errs = append(errs, NewBindingError(field+"."+req.Field, req.Field+" is required", ErrInvalidBinding))
			}
		}
	}

	return errs
}

func validateRoutes(cfg *wrangler.Config) []error {
	var errs []error
	for i, r := range cfg.Routes {
		if r.Pattern == "" {
			errs = append(errs, NewBindingError(fmt.Sprintf("routes[%d]", i), "route pattern is required", ErrInvalidRoute))
		}
	}
	if cfg.Route != nil && cfg.Route.Pattern == "" {
		errs = append(errs, NewBindingError("route", "route pattern is required", ErrInvalidRoute))
	}
	return errs
}

func validateMigrations(steps []wrangler.MigrationStep) []error {
	var errs []error
	for i, step := range steps {
		if step.Tag == "" {
			errs = append(errs, NewBindingError(fmt.Sprintf("migrations[%d]", i), "migration tag is required", ErrInvalidMigration))
		}
	}
	return errs
}
