package users

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/followgraph/pkg/errors"
)

// Field names used in record documents.
const (
	KeyFollowers      = "followers"
	KeyFriends        = "friends"
	KeyFollowersCount = "followers_count"
	KeyFriendsCount   = "friends_count"
	KeyScreenName     = "screen_name"
)

// countKeys maps each list field to the field holding its declared count.
var countKeys = map[string]string{
	KeyFollowers: KeyFollowersCount,
	KeyFriends:   KeyFriendsCount,
}

// Record is one user's adjacency data.
type Record struct {
	ID             string
	ScreenName     string
	Followers      []string
	Friends        []string
	FollowersCount int
	FriendsCount   int

	// malformed holds fields that were absent or had the wrong shape.
	malformed map[string]error
}

// NewRecord creates a well-formed record whose declared counts match its lists.
func NewRecord(id string, followers, friends []string) *Record {
	return &Record{
		ID:             id,
		Followers:      followers,
		Friends:        friends,
		FollowersCount: len(followers),
		FriendsCount:   len(friends),
	}
}

// List returns the identifier list stored under key ("followers" or
// "friends"). It returns a MALFORMED_RECORD error when the field was
// missing or had the wrong shape, or when key names no list.
func (r *Record) List(key string) ([]string, error) {
	if err := r.malformed[key]; err != nil {
		return nil, err
	}
	switch key {
	case KeyFollowers:
		return r.Followers, nil
	case KeyFriends:
		return r.Friends, nil
	default:
		return nil, errors.New(errors.ErrCodeMalformedRecord, "user %s: no list field %q", r.ID, key)
	}
}

// Declared returns the count the network declared for the list under key.
func (r *Record) Declared(key string) (int, error) {
	ck, ok := countKeys[key]
	if !ok {
		return 0, errors.New(errors.ErrCodeMalformedRecord, "user %s: no count for %q", r.ID, key)
	}
	if err := r.malformed[ck]; err != nil {
		return 0, err
	}
	if key == KeyFollowers {
		return r.FollowersCount, nil
	}
	return r.FriendsCount, nil
}

// Consistent reports whether the list under key is well formed and has
// exactly the declared number of entries.
func (r *Record) Consistent(key string) bool {
	list, err := r.List(key)
	if err != nil {
		return false
	}
	n, err := r.Declared(key)
	return err == nil && n == len(list)
}

// Malformed returns the names of malformed fields, sorted.
func (r *Record) Malformed() []string {
	var keys []string
	for k := range r.malformed {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MarkMalformed flags field as malformed. It is used by decoders and by
// tests that need to simulate bad input.
func (r *Record) MarkMalformed(field string, cause error) {
	if r.malformed == nil {
		r.malformed = make(map[string]error)
	}
	r.malformed[field] = errors.Wrap(errors.ErrCodeMalformedRecord, cause, "user %s: field %q", r.ID, field)
}

// decodeRecord builds a record from a raw JSON value. It never fails: every
// problem is recorded as a malformed field.
func decodeRecord(id string, raw json.RawMessage) *Record {
	r := &Record{ID: id}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		cause := errMissing
		if err != nil {
			cause = err
		}
		for _, k := range []string{KeyFollowers, KeyFriends, KeyFollowersCount, KeyFriendsCount} {
			r.MarkMalformed(k, cause)
		}
		return r
	}

	if v, ok := fields[KeyScreenName]; ok {
		_ = json.Unmarshal(v, &r.ScreenName)
	}

	decodeList := func(key string, dst *[]string) {
		v, ok := fields[key]
		if !ok {
			r.MarkMalformed(key, errMissing)
			return
		}
		ids, err := decodeIDs(v)
		if err != nil {
			r.MarkMalformed(key, err)
			return
		}
		*dst = ids
	}
	decodeCount := func(key string, dst *int) {
		v, ok := fields[key]
		if !ok {
			r.MarkMalformed(key, errMissing)
			return
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			r.MarkMalformed(key, err)
			return
		}
		i, err := n.Int64()
		if err != nil || i < 0 {
			r.MarkMalformed(key, errNotCount)
			return
		}
		*dst = int(i)
	}

	decodeList(KeyFollowers, &r.Followers)
	decodeList(KeyFriends, &r.Friends)
	decodeCount(KeyFollowersCount, &r.FollowersCount)
	decodeCount(KeyFriendsCount, &r.FriendsCount)
	return r
}

// decodeIDs decodes a JSON array of string or numeric identifiers.
func decodeIDs(raw json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, errNotList
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		id, err := decodeID(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeID accepts "123" or 123 and returns "123".
func decodeID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", errEmptyID
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errNotID
	}
	if _, err := n.Int64(); err != nil {
		// Large IDs are still valid decimal integers.
		for _, c := range n.String() {
			if c < '0' || c > '9' {
				return "", errNotID
			}
		}
	}
	return n.String(), nil
}
