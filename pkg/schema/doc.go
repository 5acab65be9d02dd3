// Package schema provides the token type system used by actor ports and
// scope variables.
//
// Types are parsed from the compact notation found in actor descriptions:
//
//	int, int12, uint8, bool, float, double, string, [int], [uint8;4]
//
// Sized integers carry a bit width (1 to 64) and validate value ranges, which
// matters for hardware targets where ports are declared with arbitrary
// precision. Lists may declare a fixed length.
//
// A Schema maps variable names to types and validates literal initial values:
//
//	s, err := schema.ParseTypeMap(map[string]string{"count": "uint8", "taps": "[int;4]"})
//	if err != nil {
//	    return err
//	}
//	err = schema.Validate(s, map[string]any{"count": 3, "taps": []any{1, 2, 3, 4}})
package schema
