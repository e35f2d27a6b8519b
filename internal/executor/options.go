package executor

// Options configures an Executor.
//
// Defaults:
// - RequestBuilder: DefaultRequestBuilder (POST with a JSON body)
// - RequestEditor:  none
type Options struct {
	RequestBuilder RequestBuilder
	RequestEditor  RequestEditor
}

// Option mutates Options
//
// Use WithX helpers below.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{RequestBuilder: DefaultRequestBuilder}
}

func WithRequestBuilder(b RequestBuilder) Option { return func(o *Options) { o.RequestBuilder = b } }
func WithRequestEditor(e RequestEditor) Option   { return func(o *Options) { o.RequestEditor = e } }

// WithGET sends documents as GET requests with a "query" URL parameter.
func WithGET() Option { return WithRequestBuilder(GETRequestBuilder) }
