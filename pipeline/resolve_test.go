package pipeline

import (
	"testing"

	"ewintr.nl/tubemap/model"
	"github.com/stretchr/testify/assert"
)

func TestResolveVideoID(t *testing.T) {
	for _, tc := range []struct {
		name string
		ref  string
		exp  model.YoutubeVideoID
	}{
		{name: "bare id", ref: "dQw4w9WgXcQ", exp: "dQw4w9WgXcQ"},
		{name: "short link", ref: "https://youtu.be/dQw4w9WgXcQ", exp: "dQw4w9WgXcQ"},
		{name: "short link with query", ref: "https://youtu.be/dQw4w9WgXcQ?t=42", exp: "dQw4w9WgXcQ"},
		{name: "watch url", ref: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", exp: "dQw4w9WgXcQ"},
		{name: "watch url with extra params", ref: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL12&t=7", exp: "dQw4w9WgXcQ"},
		{name: "mobile url", ref: "https://m.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", exp: "dQw4w9WgXcQ"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ResolveVideoID(tc.ref)
			assert.NoError(t, err)
			assert.Equal(t, tc.exp, id)
		})
	}
}

func TestResolveVideoIDInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		ref  string
	}{
		{name: "empty", ref: ""},
		{name: "too short", ref: "dQw4w9"},
		{name: "too long", ref: "dQw4w9WgXcQQQ"},
		{name: "not alphanumeric", ref: "dQw4w9WgXc!"},
		{name: "unrelated url", ref: "https://example.com/watch"},
		{name: "short link without id", ref: "https://youtu.be/"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveVideoID(tc.ref)
			assert.ErrorIs(t, err, ErrInvalidReference)
		})
	}
}
