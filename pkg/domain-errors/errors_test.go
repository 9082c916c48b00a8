package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAs(t *testing.T) {
	t.Run("finds a wrapped coded error", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeNotFound, "user not found"))
		de, ok := As(err)
		assert.True(t, ok)
		assert.Equal(t, CodeNotFound, de.Code)
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		_, ok := As(errors.New("boom"))
		assert.False(t, ok)
	})

	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CodeInternal, "failed to save user")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to save user: disk full", err.Error())
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest: http.StatusBadRequest,
		CodeNotFound:   http.StatusNotFound,
		CodeInternal:   http.StatusInternalServerError,
		Code("other"):  http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
