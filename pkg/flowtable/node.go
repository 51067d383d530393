package flowtable

// NodeKind discriminates the two node families. Decisions face the user,
// Actions run backend processing.
type NodeKind string

const (
	KindDecision NodeKind = "D"
	KindAction   NodeKind = "A"
)

// WhatNextCase is one routing branch of an Action node: when the node's
// decision variable equals Match, control moves to Target.
type WhatNextCase struct {
	Match  string `json:"match"`
	Target int    `json:"target"`
}

// FallbackMatch is the mandatory error branch of a What Next list.
const FallbackMatch = "error"

// NodeRecord is one row of the conversation graph. Exactly one of the
// Decision / Action field sets is populated; the serializer normalizes
// records that violate that rather than rejecting them.
type NodeRecord struct {
	Num  int
	Kind NodeKind
	Name string

	// NLU fields
	Intent      string
	EntityType  string
	Entity      string
	NLUDisabled bool

	// Routing
	NextNodes *int // single child, Decision nodes only
	WhatNext  []WhatNextCase
	Rich      RichAsset

	// Decision-only
	Message        string
	AnswerRequired bool

	// Action-only
	Command          string
	Output           string
	Input            string
	ParamInput       map[string]string
	DecisionVariable string

	// Metadata
	Behaviors   string
	Description string
	Tags        string
	Skill       string
	Variable    string
	Platform    string
	Flows       string
	CSSClass    string
}

// OutDegree counts every destination reachable from the node: the single
// next-node pointer plus all rich-asset destinations. The compiler requires
// this to be exactly 1 when NLU is disabled; that rule is checked externally,
// not here.
func (n *NodeRecord) OutDegree() int {
	degree := 0
	if n.NextNodes != nil {
		degree++
	}
	if n.Rich != nil {
		degree += n.Rich.DestinationCount()
	}
	return degree
}

// HasFallback reports whether the What Next list carries its error branch.
func (n *NodeRecord) HasFallback() bool {
	for _, c := range n.WhatNext {
		if c.Match == FallbackMatch {
			return true
		}
	}
	return false
}
