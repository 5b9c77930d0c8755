package tracing

// Span attribute keys for registry fetches.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPURL        = "url.full"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrResponseBytes  = "http.response.body.size"

	AttrTargetCategory = "registry.target.category"
	AttrTargetName     = "registry.target.name"
	AttrIndexObjects   = "registry.index.objects"
	AttrROAFormat      = "registry.roa.format"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanIndexFetch  = "registry.index"
	SpanObjectFetch = "registry.object"
	SpanROAFetch    = "registry.roa"
	SpanPrefixHTTP  = "http."
)

// Event names.
const (
	EventNotModified = "http.not_modified"
	EventDecoded     = "payload.decoded"
)
