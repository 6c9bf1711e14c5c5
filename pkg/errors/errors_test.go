package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/surfpub/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFound(t *testing.T) {
	base := pkgerrors.NewAPIError("confluence", 404, "no content")
	wrapped := errors.Join(errors.New("failed"), base)
	assert.True(t, pkgerrors.IsNotFound(wrapped))
	assert.False(t, pkgerrors.IsNotFound(pkgerrors.NewAPIError("confluence", 400, "bad")))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "space_key",
			Message: "cannot be blank",
		}
		assert.Equal(t, "validation failed for field space_key: cannot be blank", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("wrap helper", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapValidation("base_url", nil))
		err := pkgerrors.WrapValidation("base_url", errors.New("must be a valid URL"))
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Contains(t, err.Error(), "base_url")
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"unauthorized", 401, pkgerrors.ErrCredentialsInvalid},
		{"forbidden", 403, pkgerrors.ErrCredentialsInvalid},
		{"not found", 404, pkgerrors.ErrNotFound},
		{"rate limited", 429, pkgerrors.ErrRateLimited},
		{"server error", 503, pkgerrors.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("confluence", tt.status, "boom")
			assert.Contains(t, err.Error(), "confluence")
			assert.Contains(t, err.Error(), fmt.Sprint(tt.status))
			assert.True(t, errors.Is(err, tt.target))
		})
	}

	t.Run("bad request matches no sentinel", func(t *testing.T) {
		err := pkgerrors.NewAPIError("confluence", 400, "bad")
		assert.False(t, errors.Is(err, pkgerrors.ErrNotFound))
		assert.False(t, pkgerrors.IsServiceUnavailable(err))
	})

	t.Run("with wrapped error", func(t *testing.T) {
		baseErr := errors.New("connection reset")
		err := &pkgerrors.APIError{
			Service: "jira",
			Message: "request failed",
			Err:     baseErr,
		}
		assert.Equal(t, "API error from jira: request failed", err.Error())
		assert.Equal(t, baseErr, err.Unwrap())
	})
}

func TestLookupError(t *testing.T) {
	base := pkgerrors.NewAPIError("confluence", 500, "internal error")
	err := pkgerrors.NewLookupError("EUE - Surfboard Report - alpha", base)

	assert.Contains(t, err.Error(), "EUE - Surfboard Report - alpha")
	assert.True(t, pkgerrors.IsLookupError(err))
	assert.True(t, pkgerrors.IsServiceUnavailable(err))
	assert.False(t, pkgerrors.IsPublishError(err))

	var apiErr *pkgerrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestPublishError(t *testing.T) {
	t.Run("update carries page id", func(t *testing.T) {
		err := pkgerrors.NewPublishError("update", "T", "12345", errors.New("conflict"))
		assert.Equal(t, `update of page "T" (id 12345) failed: conflict`, err.Error())
		assert.True(t, pkgerrors.IsPublishError(err))
	})

	t.Run("create has no page id", func(t *testing.T) {
		err := pkgerrors.NewPublishError("create", "T", "", errors.New("bad request"))
		assert.Equal(t, `create of page "T" failed: bad request`, err.Error())
	})
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("credentials", "CONF_USER and CONF_PASSWORD must be set", pkgerrors.ErrCredentialsRequired)
	assert.Contains(t, err.Error(), "credentials")
	assert.True(t, pkgerrors.IsCredentialsError(err))
}

func TestIOError(t *testing.T) {
	t.Run("unwrap", func(t *testing.T) {
		baseErr := errors.New("permission denied")
		err := pkgerrors.NewIOError("read", "./eue-alpha-map.insert", baseErr)
		assert.Equal(t, baseErr, err.Unwrap())
		assert.Contains(t, err.Error(), "./eue-alpha-map.insert")
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapIO("walk", "./", errors.New("not a directory"))
		ioErr, ok := err.(*pkgerrors.IOError)
		require.True(t, ok)
		assert.Equal(t, "walk", ioErr.Operation)
		assert.Equal(t, "./", ioErr.Path)
	})
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("create", "request", "GET /rest/api/content", errors.New("bad url"))
	resErr, ok := err.(*pkgerrors.ResourceError)
	require.True(t, ok)
	assert.Equal(t, "create", resErr.Operation)
	assert.Equal(t, "failed to create request GET /rest/api/content: bad url", err.Error())
}

func TestParseError(t *testing.T) {
	t.Run("with file and position", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "yaml",
			File:    "Chart.yaml",
			Line:    3,
			Column:  1,
			Message: "unexpected key",
		}
		assert.Contains(t, err.Error(), "Chart.yaml:3:1")
	})

	t.Run("without file", func(t *testing.T) {
		err := pkgerrors.WrapParse("json", "", errors.New("unexpected EOF"))
		assert.Equal(t, "json parse error: unexpected EOF", err.Error())
	})
}

func TestProcessError(t *testing.T) {
	err := pkgerrors.NewProcessError("fetch chart", "helm fetch --untar repo/eue", "Error: not found", errors.New("exit status 1"))
	assert.Contains(t, err.Error(), "helm fetch")
	assert.Contains(t, err.Error(), "Output: Error: not found")
}

