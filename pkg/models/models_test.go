package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLessonStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "true", want: "true"},
		{in: " false ", want: "false"},
		{in: "42.5", want: "42.5"},
		{in: `"done"`, want: `"done"`},
		{in: "null", want: "null"},
		{in: "", want: "null"},
		{in: `{"a":1}`, wantErr: true},
		{in: "[1,2]", wantErr: true},
		{in: "tru", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLessonStatus(json.RawMessage(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestUserPublicDropsPassword(t *testing.T) {
	u := User{ID: "1", Username: "a", Email: "a@x.com", Password: "p", CreatedAt: "2024-01-01T00:00:00.000Z"}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "password")
	assert.NotContains(t, m, "purchasedCourses")
	assert.NotContains(t, m, "progress")
	assert.Equal(t, "a@x.com", m["email"])
	assert.Equal(t, "p", u.Password, "original must keep its password")
}

func TestEmptyDocumentsMarshalAsLists(t *testing.T) {
	b, err := json.Marshal(UsersDocument{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[]}`, string(b))

	b, err = json.Marshal(BlogsDocument{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"blogs":[]}`, string(b))
}

func TestProgressRoundTripKeepsValues(t *testing.T) {
	in := `{"users":[{"id":"1","username":"a","email":"e","password":"p","createdAt":"t",
		"progress":{"go":{"l1":true,"l2":"half","l3":null}}}]}`

	var doc UsersDocument
	require.NoError(t, json.Unmarshal([]byte(in), &doc))

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}
