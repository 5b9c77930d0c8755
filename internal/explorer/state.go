package explorer

// ViewState is the single active view.
type ViewState int

const (
	// StateMain shows per-category counts.
	StateMain ViewState = iota
	// StateSearch shows a result list.
	StateSearch
	// StateObject shows one object.
	StateObject
	// StateWait is shown while a fetch is in flight.
	StateWait
	// StateError shows the last failure.
	StateError
)

func (s ViewState) String() string {
	switch s {
	case StateMain:
		return "main"
	case StateSearch:
		return "search"
	case StateObject:
		return "object"
	case StateWait:
		return "wait"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
