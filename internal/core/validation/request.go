package validation

// ConfigFormats are the config document formats a conversion request accepts.
var ConfigFormats = []string{"toml", "json", "jsonc"}

// =============================================================================
// Conversion Request Validation
// =============================================================================

// ValidateConvertFields validates the fields of a conversion request.
// format may be empty, meaning json.
//
// Example:
//
//	field, msg := ValidateConvertFields(true, "toml")
//	if field != "" {
//	    // Handle validation error
//	}
func ValidateConvertFields(hasConfig bool, format string) (field, message string) {
	if !hasConfig {
		return "config", "config is required"
	}
	if format == "" {
		return "", ""
	}
	for _, f := range ConfigFormats {
		if format == f {
			return "", ""
		}
	}
	return "format", "format must be one of toml, json, jsonc"
}

// =============================================================================
// Pagination Validation
// =============================================================================

// ValidatePagination validates list paging parameters. Zero limit means the
// default page size.
func ValidatePagination(limit, offset int) (field, message string) {
	if limit < 0 {
		return "limit", "limit must not be negative"
	}
	if offset < 0 {
		return "offset", "offset must not be negative"
	}
	return "", ""
}
