// Package schema validates decoded JSON request bodies.
//
// A Schema maps field names to a Field: a Type plus presence rules. Types
// cover the values encoding/json produces (string, number, bool, array,
// object, any). Validation collects every failure into an
// AggregateError so callers can log the full picture while answering with
// a single generic message.
//
//	body := schema.Schema{
//	    "buttonIndex": schema.Required(schema.Int()),
//	    "postUrl":     schema.Required(schema.String()),
//	    "inputText":   schema.Optional(schema.String()),
//	    "referrer":    schema.Nullish(schema.String()),
//	}
//
//	if err := schema.Validate(body, data); err != nil {
//	    // reject the request
//	}
package schema
