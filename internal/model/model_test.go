package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_FileName(t *testing.T) {
	tests := []struct {
		req  Request
		want string
	}{
		{Request{PackageID: "foo"}, "foo.apk"},
		{Request{PackageID: "foo", Version: "1.2.3"}, "foo@1.2.3.apk"},
		{Request{PackageID: "org.example.app", Version: "2.0-beta"}, "org.example.app@2.0-beta.apk"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.FileName())
		})
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    Request
		wantErr bool
	}{
		{name: "bare id", token: "org.example.app", want: Request{PackageID: "org.example.app"}},
		{name: "pinned", token: "org.example.app@1.4.2", want: Request{PackageID: "org.example.app", Version: "1.4.2"}},
		{name: "surrounding spaces", token: "  org.example.app @ 1.0 ", want: Request{PackageID: "org.example.app", Version: "1.0"}},
		{name: "trailing at", token: "org.example.app@", want: Request{PackageID: "org.example.app"}},
		{name: "empty", token: "", wantErr: true},
		{name: "empty segment", token: "org..app", wantErr: true},
		{name: "bad character", token: "org.exa mple", wantErr: true},
		{name: "version with slash", token: "org.example.app@../../etc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRequest), "expected ErrInvalidRequest, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequests(t *testing.T) {
	reqs, err := ParseRequests("a.b, c.d@1.0,, a.b")
	require.NoError(t, err)
	assert.Equal(t, []Request{
		{PackageID: "a.b"},
		{PackageID: "c.d", Version: "1.0"},
		{PackageID: "a.b"},
	}, reqs)

	_, err = ParseRequests("a.b,bad id")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestReadRequests(t *testing.T) {
	input := `# apps to mirror
org.example.one
org.example.two, 2.1.0

org.example.three@3.0
`
	reqs, err := ReadRequests(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Request{
		{PackageID: "org.example.one"},
		{PackageID: "org.example.two", Version: "2.1.0"},
		{PackageID: "org.example.three", Version: "3.0"},
	}, reqs)
}

func TestReadRequests_Invalid(t *testing.T) {
	_, err := ReadRequests(strings.NewReader("org.example.one@1.0,2.0\n"))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = ReadRequests(strings.NewReader("not valid!\n"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "bad_response", OutcomeBadResponse.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}

func TestOutcome_Failed(t *testing.T) {
	failed := map[Outcome]bool{
		OutcomeSuccess:          false,
		OutcomeAlreadyExists:    false,
		OutcomePermissionDenied: false,
		OutcomeExhausted:        true,
		OutcomeNoMatch:          true,
		OutcomeBadResponse:      true,
	}
	for _, o := range Outcomes() {
		assert.Equal(t, failed[o], o.Failed(), o.String())
	}
}
