// SPDX-License-Identifier: AGPL-3.0-or-later
package apispec

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
)

// Validate loads data as an OpenAPI 3 description and runs structural
// validation. External references are not followed.
func Validate(ctx context.Context, data []byte) error {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return &Error{Op: "validate", Kind: ErrInvalidDocument, Err: err}
	}
	if err := doc.Validate(ctx); err != nil {
		return &Error{Op: "validate", Kind: ErrInvalidDocument, Err: err}
	}
	return nil
}
