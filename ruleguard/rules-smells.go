package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Consecutive guards with the same return can be merged with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic`)
}

// errorWrapping keeps provider errors matchable with errors.Is/As all the way to the handlers.
func errorWrapping(m dsl.Matcher) {
	m.Match(`fmt.Errorf($f, $*_, $err)`).
		Where(m["err"].Type.Is("error") && m["f"].Text.Matches(`%v"$`)).
		Report(`wrap the trailing error with %w so callers can match it`)

	m.Match(`errors.New(fmt.Sprintf($*args))`).
		Report(`use fmt.Errorf instead of errors.New(fmt.Sprintf(...))`).
		Suggest(`fmt.Errorf($args)`)
}

// providerClients keeps every adapter call bounded by the configured timeout.
func providerClients(m dsl.Matcher) {
	m.Match(`http.DefaultClient`, `http.Get($*_)`, `http.Post($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/infra/llm$`)).
		Report(`provider adapters must use their own *http.Client with a timeout`)
}

// contextPropagation flags fresh root contexts inside request-scoped code.
func contextPropagation(m dsl.Matcher) {
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().PkgPath.Matches(`/internal/(api|domain)/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`propagate the caller's context instead of starting a new one`)
}

// logging keeps the service on structured slog output.
func logging(m dsl.Matcher) {
	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Print($*_)`, `log.Fatalf($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report(`use the injected *slog.Logger instead of the log package`)
}
