package schema

import "sort"

// Schema maps variable names to their declared types.
type Schema map[string]Type

// Validate checks every non-nil value of data that has a declared type.
// Names without a type and nil values are skipped: initial values are optional.
// All failures are returned together as an *AggregateError.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value := data[key]
		typ, ok := schema[key]
		if !ok || value == nil {
			continue
		}
		if err := typ.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
