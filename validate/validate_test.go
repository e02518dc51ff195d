package validate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/forum-go/apperror"
)

type sample struct {
	Email    string  `json:"email" validate:"required,email"`
	Title    string  `json:"title" validate:"required,max=10"`
	ParentID *string `json:"parentContributionId,omitempty" validate:"omitempty,uuid"`
}

func request(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeValid(t *testing.T) {
	var s sample
	err := Decode(request(`{"email":"a@b.io","title":"hi"}`), &s)

	require.NoError(t, err)
	assert.Equal(t, "hi", s.Title)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var s sample
	err := Decode(request(`{"email":"a@b.io","title":"hi","admin":true}`), &s)

	assert.True(t, apperror.IsBadRequest(err))
}

func TestDecodeRejectsEmptyBody(t *testing.T) {
	var s sample
	err := Decode(request(``), &s)

	assert.True(t, apperror.IsBadRequest(err))
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	var s sample
	err := Decode(request(`{"email":"a@b.io","title":"hi"} {}`), &s)

	assert.True(t, apperror.IsBadRequest(err))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	bad := "not-a-uuid"
	err := Struct(sample{Email: "nope", Title: "far too long a title", ParentID: &bad})

	require.True(t, apperror.IsValidationError(err))
	ae, _ := apperror.FromError(err)

	fields := map[string]string{}
	for _, d := range ae.Details {
		fields[d.Field] = d.Rule
	}
	assert.Equal(t, map[string]string{
		"email":                "email",
		"title":                "max",
		"parentContributionId": "uuid",
	}, fields)
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	var s sample
	body := `{"email":"a@b.io","title":"` + strings.Repeat("x", maxBodyBytes) + `"}`

	err := Decode(request(body), &s)

	ae, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, ae.StatusCode())
	assert.Contains(t, ae.Message, "must not exceed")
}

type listSample struct {
	Tags []string `json:"tags" validate:"max=2,dive,max=3"`
}

func TestStructWordsLengthRulesByKind(t *testing.T) {
	tests := []struct {
		name string
		in   listSample
		want string
	}{
		{"too many items", listSample{Tags: []string{"a", "b", "c"}}, "tags must be at most 2 items"},
		{"item too long", listSample{Tags: []string{"abcd"}}, "must be at most 3 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae, ok := apperror.FromError(Struct(tt.in))
			require.True(t, ok)
			require.Len(t, ae.Details, 1)
			assert.Contains(t, ae.Details[0].Message, tt.want)
		})
	}
}
