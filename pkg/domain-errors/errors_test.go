package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	base := New(CodeAlreadyExists, "domain taken")
	wrapped := fmt.Errorf("handling request: %w", base)

	assert.True(t, HasCode(wrapped, CodeAlreadyExists))
	assert.False(t, HasCode(wrapped, CodeNotEligible))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeCollaborator, "fee transfer failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeCollaborator, CodeOf(err))
}

func TestCodeOfUnclassified(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:      http.StatusBadRequest,
		CodeZeroIdentity:      http.StatusBadRequest,
		CodeUnauthenticated:   http.StatusUnauthorized,
		CodeUnauthorized:      http.StatusForbidden,
		CodeNotEligible:       http.StatusForbidden,
		CodeNotRegistered:     http.StatusNotFound,
		CodeAlreadyExists:     http.StatusConflict,
		CodeAlreadyRegistered: http.StatusConflict,
		CodeCollaborator:      http.StatusBadGateway,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
