package users

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/followgraph/pkg/errors"
)

// Tweet is the subset of a captured tweet used for display.
type Tweet struct {
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Tweets maps user identifiers to their captured tweets, oldest first.
type Tweets map[string][]Tweet

// Count returns the number of tweets captured for id.
func (t Tweets) Count(id string) int { return len(t[id]) }

// First returns the text of the first tweet captured for id, or "".
func (t Tweets) First(id string) string {
	if len(t[id]) == 0 {
		return ""
	}
	return t[id][0].Text
}

// ReadTweets decodes a JSON object mapping user identifiers to tweet arrays.
func ReadTweets(r io.Reader) (Tweets, error) {
	var t Tweets
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tweets")
	}
	if t == nil {
		t = Tweets{}
	}
	return t, nil
}

// LoadTweets reads tweets from path. Paths ending in ".gz" are gunzipped.
func LoadTweets(path string) (Tweets, error) {
	rc, _, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := ReadTweets(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
