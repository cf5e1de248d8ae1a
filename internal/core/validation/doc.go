// Package validation provides pure validation functions for API handlers.
//
// All functions are pure (no I/O, no side effects). Each returns the name of
// the first offending field and a message, or empty strings when the input
// is valid.
//
// # Functions
//
//   - ValidateConvertFields: Validate a conversion request before decoding its config
//   - ValidatePagination: Validate history list paging parameters
//
// # Usage
//
//	if field, msg := validation.ValidateConvertFields(len(req.Config) > 0, req.Format); field != "" {
//	    // Return 400 Bad Request with msg
//	}
package validation
