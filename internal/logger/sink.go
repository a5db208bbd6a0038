package logger

import "github.com/custodia-labs/docask/internal/core/domain"

// SearchDebugSink returns a sink that logs search diagnostics at debug level.
func SearchDebugSink() domain.DebugSink {
	return func(d domain.SearchDiagnostics) {
		l := Component("search")
		l.Debug().
			Str("query", d.Query).
			Strs("tokens", d.Tokens).
			Int("candidates", d.Candidates).
			Int("hits", len(d.Hits)).
			Msg("lexical search")

		for i, h := range d.Hits {
			l.Debug().
				Int("rank", i+1).
				Float64("score", h.Score).
				Int("occurrences", h.Occurrences).
				Float64("tokens_found", h.TokensFoundRatio).
				Str("file", h.FileName).
				Int("page", h.Page).
				Str("preview", h.Preview).
				Msg("hit")
		}
	}
}
