// Package rankers holds the relevance engines used by search.
//
// Rankers are pure functions over a candidate set of chunks: they never
// touch storage and they never call an oracle. The lexical ranker scores
// term frequency with word-boundary matching; the vector ranker scores
// cosine similarity against a query embedding.
package rankers
