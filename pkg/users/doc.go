// Package users holds the user record store that the graph builder reads.
//
// # Records
//
// Each [Record] carries a user's self-reported follower and friend
// identifier lists together with the counts the social network declared for
// that user. The two are expected to agree but often do not, because lists
// are scraped page by page while counts come from the profile snapshot.
//
// Records are decoded leniently. Identifiers may appear as JSON strings or
// numbers and are normalized to decimal strings. A field with the wrong
// shape (the scraper writes "followers": 0 before a list has been fetched)
// does not reject the record: [Record.List] reports a MALFORMED_RECORD error
// for that field and callers treat it as "no data".
//
// # Store
//
// A [Store] keeps records in the order they appear in the source document.
// The builder walks users in this order, so a store loaded twice from the
// same file always produces the same graph.
//
// Load the store once at startup with [Load] and pass it explicitly to the
// builder and reducer:
//
//	store, err := users.Load("users_dict.json.gz")
//	if err != nil {
//	    return err
//	}
//	g, report, err := builder.Build(store, builder.Options{})
//
// Files ending in ".gz" are transparently decompressed.
//
// # Tweets
//
// [Tweets] maps identifiers to captured tweets. It only feeds rendering
// (node sizes and hover text) and is optional everywhere.
package users
