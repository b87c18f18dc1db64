// SPDX-License-Identifier: AGPL-3.0-or-later
package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, 0, ExitCodeOf(nil))
	assert.Equal(t, ExitFailure, ExitCodeOf(cause))
	assert.Equal(t, 3, ExitCodeOf(Wrap(3, "enrich", cause)))
	assert.Equal(t, 3, ExitCodeOf(fmt.Errorf("outer: %w", Wrap(3, "enrich", cause))))
	assert.Equal(t, ExitFailure, ExitCodeOf(New(0, "zero is not an error code")))
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "enrich: boom", Wrap(2, "enrich", cause).Error())
	assert.Equal(t, "boom", Wrap(2, "", cause).Error())
	assert.Equal(t, "plain", New(2, "plain").Error())
	assert.ErrorIs(t, Wrap(2, "enrich", cause), cause)
}
