package activity

import (
	"encoding/base64"
	"errors"
	"net/url"
)

// ErrInvalidParticipantKey is returned when a removal key cannot be decoded.
var ErrInvalidParticipantKey = errors.New("invalid participant key")

// ParticipantKey identifies one participant of one activity on the rendered board.
// Every removal control carries its key, so a single handler serves all of them.
type ParticipantKey struct {
	Activity string
	Email    string
}

// Encode returns an opaque, URL-safe form of the key.
func (k ParticipantKey) Encode() string {
	v := url.Values{}
	v.Set("activity", k.Activity)
	v.Set("email", k.Email)
	return base64.RawURLEncoding.EncodeToString([]byte(v.Encode()))
}

// ParseParticipantKey reverses Encode.
// POST: both fields are non-empty, or ErrInvalidParticipantKey is returned
func ParseParticipantKey(s string) (ParticipantKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return ParticipantKey{}, ErrInvalidParticipantKey
	}
	v, err := url.ParseQuery(string(raw))
	if err != nil {
		return ParticipantKey{}, ErrInvalidParticipantKey
	}
	k := ParticipantKey{Activity: v.Get("activity"), Email: v.Get("email")}
	if k.Activity == "" || k.Email == "" {
		return ParticipantKey{}, ErrInvalidParticipantKey
	}
	return k, nil
}
