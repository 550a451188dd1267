package yildiz

// DefaultRelation is used when an edge is created without a relation.
const DefaultRelation = "1"

// TranslationInput is the payload of StoreTranslation.
type TranslationInput struct {
	Value interface{} `json:"value"`
	Data  interface{} `json:"data"`

	// TTLD marks the translation for deletion after the server's TTL.
	TTLD bool `json:"ttld"`
}

func (in TranslationInput) normalize() TranslationInput {
	in.Data = emptyObject(in.Data)
	return in
}

// NodeInput is the payload of CreateNode. A string identifier is hashed by
// the server.
type NodeInput struct {
	Identifier interface{} `json:"identifier"`
	Data       interface{} `json:"data"`
	TTLD       bool        `json:"ttld"`

	// Extend sets custom extended database columns.
	Extend interface{} `json:"extend"`
}

func (in NodeInput) normalize() NodeInput {
	in.Data = emptyObject(in.Data)
	in.Extend = emptyObject(in.Extend)
	return in
}

// EdgeInput is the payload of CreateEdge. LeftID and RightID are node ids,
// not node identifiers.
type EdgeInput struct {
	LeftID     interface{} `json:"leftId"`
	RightID    interface{} `json:"rightId"`
	Relation   string      `json:"relation"`
	Attributes interface{} `json:"attributes"`
	TTLD       bool        `json:"ttld"`
	Extend     interface{} `json:"extend"`
}

func (in EdgeInput) normalize() EdgeInput {
	if in.Relation == "" {
		in.Relation = DefaultRelation
	}
	in.Attributes = emptyObject(in.Attributes)
	in.Extend = emptyObject(in.Extend)
	return in
}

// EdgeKey addresses an edge for depth changes.
type EdgeKey struct {
	LeftID   interface{} `json:"leftId"`
	RightID  interface{} `json:"rightId"`
	Relation string      `json:"relation"`
}

func (k EdgeKey) normalize() EdgeKey {
	if k.Relation == "" {
		k.Relation = DefaultRelation
	}
	return k
}

// RelationInput is the payload of UpsertRelation. Build it with NewRelation
// so DepthBeforeCreation starts out true.
type RelationInput struct {
	LeftValue     interface{} `json:"leftNodeIdentifierVal"`
	RightValue    interface{} `json:"rightNodeIdentifierVal"`
	LeftNodeData  interface{} `json:"leftNodeData"`
	RightNodeData interface{} `json:"rightNodeData"`
	TTLD          bool        `json:"ttld"`
	Relation      string      `json:"relation"`
	EdgeData      interface{} `json:"edgeData"`

	// DepthBeforeCreation always creates a new edge when true and increases
	// the depth of an existing one when false. Do not mix both per relation.
	DepthBeforeCreation bool `json:"depthBeforeCreation"`

	// IsPopularRightNode hints that the right node is used extensively.
	IsPopularRightNode bool `json:"isPopularRightNode"`

	// EdgeTime is the time of the event behind the edge in epoch
	// milliseconds. Zero means the time of the call.
	EdgeTime int64 `json:"edgeTime"`
}

// NewRelation returns a RelationInput between two node values with the
// server's defaults.
func NewRelation(left, right interface{}) RelationInput {
	return RelationInput{
		LeftValue:           left,
		RightValue:          right,
		Relation:            DefaultRelation,
		DepthBeforeCreation: true,
	}
}

func (in RelationInput) normalize(nowMillis int64) RelationInput {
	if in.Relation == "" {
		in.Relation = DefaultRelation
	}
	in.LeftNodeData = emptyObject(in.LeftNodeData)
	in.RightNodeData = emptyObject(in.RightNodeData)
	in.EdgeData = emptyObject(in.EdgeData)
	if in.EdgeTime == 0 {
		in.EdgeTime = nowMillis
	}
	return in
}

type queryPayload struct {
	Query        string      `json:"query"`
	Replacements interface{} `json:"replacements,omitempty"`
}

type pathPayload struct {
	Start interface{} `json:"start"`
	End   interface{} `json:"end"`
}

type edgeInfoPayload struct {
	Values []interface{} `json:"values"`
}
