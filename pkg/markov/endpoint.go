package markov

import "strconv"

// EndpointKind distinguishes real nodes from the two chain sentinels.
type EndpointKind uint8

const (
	// KindNode marks an endpoint that refers to a registered Node.
	KindNode EndpointKind = iota
	// KindStart marks the virtual Start-Of-Chain endpoint.
	KindStart
	// KindEnd marks the virtual End-Of-Chain endpoint.
	KindEnd
)

const (
	// StartLabel is the identifier used for the Start sentinel in exported graphs.
	StartLabel = "start"
	// EndLabel is the identifier used for the End sentinel in exported graphs.
	EndLabel = "end"
)

// Endpoint is the source or destination of a transition. It is either one of
// the sentinels (Start, End) or a reference to a node by id. Endpoints are
// comparable and are used directly as map keys.
type Endpoint struct {
	Kind EndpointKind
	ID   int
}

var (
	// Start is the virtual source every chain begins from.
	Start = Endpoint{Kind: KindStart}
	// End is the virtual destination every chain finishes at.
	End = Endpoint{Kind: KindEnd}
)

// NodeEndpoint returns the endpoint referring to the node with the given id.
func NodeEndpoint(id int) Endpoint {
	return Endpoint{Kind: KindNode, ID: id}
}

// IsStart reports whether e is the Start sentinel.
func (e Endpoint) IsStart() bool { return e.Kind == KindStart }

// IsEnd reports whether e is the End sentinel.
func (e Endpoint) IsEnd() bool { return e.Kind == KindEnd }

// IsNode reports whether e refers to a registered node.
func (e Endpoint) IsNode() bool { return e.Kind == KindNode }

// String returns the graph identifier of the endpoint: "start", "end", or the
// node id in decimal.
func (e Endpoint) String() string {
	switch e.Kind {
	case KindStart:
		return StartLabel
	case KindEnd:
		return EndLabel
	default:
		return strconv.Itoa(e.ID)
	}
}

// less orders endpoints as Start, nodes by id, End. Sampling and export use it
// so that output does not depend on map iteration order.
func (e Endpoint) less(o Endpoint) bool {
	if e.rank() != o.rank() {
		return e.rank() < o.rank()
	}
	return e.ID < o.ID
}

func (e Endpoint) rank() int {
	switch e.Kind {
	case KindStart:
		return 0
	case KindEnd:
		return 2
	default:
		return 1
	}
}
