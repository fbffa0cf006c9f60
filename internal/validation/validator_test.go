package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reychango/reychango-server/internal/errors"
	"github.com/reychango/reychango-server/internal/validation"
)

type postRequest struct {
	Title   string `json:"title" validate:"required"`
	Slug    string `json:"slug" validate:"required,slug"`
	Content string `json:"content" validate:"required"`
}

type photoRequest struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(postRequest{Title: "Hola", Slug: "hola-mundo_1", Content: "x"}))
	assert.NoError(t, v.Validate(photoRequest{Title: "Mar", URL: "https://i.ibb.co/x.jpg"}))
}

func TestValidator_Classification(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name     string
		req      any
		wantCode domainerrors.Code
	}{
		{"missing fields", postRequest{Slug: "ok"}, domainerrors.CodeMissingRequiredFields},
		{"uppercase slug", postRequest{Title: "t", Slug: "Hola", Content: "c"}, domainerrors.CodeInvalidSlugFormat},
		{"slug with spaces", postRequest{Title: "t", Slug: "hola mundo", Content: "c"}, domainerrors.CodeInvalidSlugFormat},
		{"missing wins over bad slug", postRequest{Slug: "Hola"}, domainerrors.CodeMissingRequiredFields},
		{"bad url", photoRequest{Title: "t", URL: "not a url"}, domainerrors.CodeInvalidURLFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domainerrors.CodeOf(err))
			assert.Equal(t, 400, tt.wantCode.HTTPStatus())
		})
	}
}

func TestValidator_MissingFieldsListed(t *testing.T) {
	v := validation.New()

	err := v.Validate(postRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, []string{"content", "slug", "title"}, domainErr.Details)
}
