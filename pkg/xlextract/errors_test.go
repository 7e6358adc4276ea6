package xlextract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSheetNotFoundErrorMessage(t *testing.T) {
	err := &SheetNotFoundError{Name: "Sheet1", Available: []string{"Data", "Summary"}}
	assert.Equal(t, `sheet "Sheet1" not found. Available sheets: Data, Summary`, err.Error())
}

func TestExtractionErrorUnwrap(t *testing.T) {
	cause := errors.New("bad xml")
	err := fmt.Errorf("wrapped: %w", NewExtractionError("Data", "cells", cause))

	assert.ErrorIs(t, err, cause)
	var ee *ExtractionError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, "cells", ee.Component)
	assert.Contains(t, err.Error(), `"Data"`)
}
