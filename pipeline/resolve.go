package pipeline

import (
	"strings"

	"ewintr.nl/tubemap/model"
)

const videoIDLength = 11

// ResolveVideoID normalizes a raw video reference into its video id. It
// accepts a bare 11 character id, a youtu.be short link or any URL carrying
// a v= query parameter, checked in that order. The explicit URL markers are
// checked before anything else that merely contains an 11 character run, so
// malformed URLs are rejected instead of silently matched.
func ResolveVideoID(ref string) (model.YoutubeVideoID, error) {
	if isVideoID(ref) {
		return model.YoutubeVideoID(ref), nil
	}

	if _, rest, found := strings.Cut(ref, "youtu.be/"); found {
		id, _, _ := strings.Cut(rest, "?")
		if id == "" {
			return "", ErrInvalidReference
		}
		return model.YoutubeVideoID(id), nil
	}

	if _, rest, found := strings.Cut(ref, "v="); found {
		id, _, _ := strings.Cut(rest, "&")
		if id == "" {
			return "", ErrInvalidReference
		}
		return model.YoutubeVideoID(id), nil
	}

	return "", ErrInvalidReference
}

func isVideoID(ref string) bool {
	if len(ref) != videoIDLength {
		return false
	}
	for _, r := range ref {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
