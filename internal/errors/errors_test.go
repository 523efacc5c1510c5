package errors_test

import (
	"errors"
	"net/http"
	"testing"

	rooerrs "github.com/rookeryhq/rookery/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestEConstructor(t *testing.T) {
	got := rooerrs.E(
		"something went wrong",
		rooerrs.Detail{Field: "title", Error: "was empty"},
		http.StatusBadRequest,
	)
	want := &rooerrs.Error{
		Err: errors.New("something went wrong"),
		Details: []rooerrs.Detail{
			{Field: "title", Error: "was empty"},
		},
		Status: http.StatusBadRequest,
	}

	assert.Equal(t, want, got)
}

func TestEDefaultsToInternal(t *testing.T) {
	got := rooerrs.E(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got.Err, "boom")
}
