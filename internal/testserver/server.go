// Package testserver is an in-memory stand-in for a yildiz server. It
// implements the HTTP surface the client uses, keeps one graph per tenant
// prefix and forgets everything on restart.
package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yildizdb/yildiz-go/transport"
)

// Version is reported at the server root unless overridden.
const Version = "0.0.0-test"

type node struct {
	ID         int64       `json:"id"`
	Identifier int64       `json:"identifier"`
	Data       interface{} `json:"data"`
	TTLD       bool        `json:"ttld"`
}

type edge struct {
	ID          int64       `json:"id"`
	LeftNodeID  int64       `json:"leftNodeId"`
	RightNodeID int64       `json:"rightNodeId"`
	Relation    string      `json:"relation"`
	Attributes  interface{} `json:"attributes"`
	Depth       int64       `json:"depth"`
	TTLD        bool        `json:"ttld"`
	CreatedAt   int64       `json:"createdAt"`
}

type translation struct {
	Identifier int64       `json:"identifier"`
	Value      interface{} `json:"value"`
	Data       interface{} `json:"data"`
	TTLD       bool        `json:"ttld"`
}

// graph is the state of one tenant.
type graph struct {
	nextID       int64
	nodes        map[int64]*node // by identifier
	edges        []*edge
	translations map[int64]*translation
}

func newGraph() *graph {
	return &graph{
		nodes:        map[int64]*node{},
		translations: map[int64]*translation{},
	}
}

func (g *graph) id() int64 {
	g.nextID++
	return g.nextID
}

// Server is an http.Handler serving the yildiz API from memory.
type Server struct {
	version string
	token   string
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	tenants map[string]*graph

	mux *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithToken makes every request present token in its authorization header.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithVersion sets the version reported at the root.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty server.
func New(options ...Option) *Server {
	s := &Server{
		version: Version,
		logger:  zap.NewNop(),
		now:     time.Now,
		tenants: map[string]*graph{},
		mux:     http.NewServeMux(),
	}
	for _, option := range options {
		option(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /admin/healthcheck", s.handleHealthcheck)
	s.mux.HandleFunc("GET /admin/health", s.handleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.tenant(s.handleStats))
	s.mux.HandleFunc("GET /admin/metrics", s.handleMetrics)
	s.mux.HandleFunc("GET /admin/authcheck", s.handleHealthcheck)

	s.mux.HandleFunc("POST /translator/translate-and-store", s.tenant(s.storeTranslation))
	s.mux.HandleFunc("GET /translator/{identifier}", s.tenant(s.getTranslation))
	s.mux.HandleFunc("DELETE /translator/{identifier}", s.tenant(s.deleteTranslation))

	s.mux.HandleFunc("POST /node", s.tenant(s.createNode))
	s.mux.HandleFunc("GET /node/{identifier}", s.tenant(s.getNode))
	s.mux.HandleFunc("DELETE /node/{identifier}", s.tenant(s.deleteNode))

	s.mux.HandleFunc("POST /edge", s.tenant(s.createEdge))
	s.mux.HandleFunc("GET /edge/{left}/{right}/{relation}", s.tenant(s.getEdge))
	s.mux.HandleFunc("DELETE /edge/{left}/{right}/{relation}", s.tenant(s.deleteEdge))
	s.mux.HandleFunc("PUT /edge/depth/increase", s.tenant(s.changeDepth(1)))
	s.mux.HandleFunc("PUT /edge/depth/decrease", s.tenant(s.changeDepth(-1)))
	s.mux.HandleFunc("GET /edge/left/{id}/{relation}", s.tenant(s.edgesBySide("left")))
	s.mux.HandleFunc("GET /edge/right/{id}/{relation}", s.tenant(s.edgesBySide("right")))
	s.mux.HandleFunc("GET /edge/both/{id}/{relation}", s.tenant(s.edgesBySide("both")))

	s.mux.HandleFunc("POST /access/translated-edge-info", s.tenant(s.translatedEdgeInfo))
	s.mux.HandleFunc("POST /access/upsert-singular-relation", s.tenant(s.upsertRelation))
	s.mux.HandleFunc("POST /access/upsert-singular-relation-no-transaction", s.tenant(s.upsertRelation))

	s.mux.HandleFunc("POST /raw/query", s.tenant(s.rawQuery))
	s.mux.HandleFunc("POST /raw/spread", s.tenant(s.rawQuery))

	s.mux.HandleFunc("POST /path/shortest-path", s.tenant(s.shortestPath))
}

// ServeHTTP checks authorization, then dispatches to the API routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	if s.token != "" && r.Header.Get("authorization") != s.token {
		writeError(rec, http.StatusUnauthorized, "invalid or missing authorization")
	} else {
		s.mux.ServeHTTP(rec, r)
	}

	s.logger.Debug("served",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("prefix", r.Header.Get(transport.PrefixHeader)),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", s.now().Sub(start)))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type tenantHandler func(w http.ResponseWriter, r *http.Request, g *graph)

// tenant resolves the graph for the request's prefix header and holds the
// server lock while h runs.
func (s *Server) tenant(h tenantHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefix := r.Header.Get(transport.PrefixHeader)
		if prefix == "" {
			writeError(w, http.StatusBadRequest, "missing "+transport.PrefixHeader+" header")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		g, ok := s.tenants[prefix]
		if !ok {
			g = newGraph()
			s.tenants[prefix] = g
		}
		h(w, r, g)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tenants := len(s.tenants)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "UP", "tenants": tenants})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, g *graph) {
	writeJSON(w, http.StatusOK, map[string]int{
		"nodes":        len(g.nodes),
		"edges":        len(g.edges),
		"translations": len(g.translations),
	})
}

// handleMetrics answers in the Prometheus text format, so clients see a
// body that is not JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	names := make([]string, 0, len(s.tenants))
	for name := range s.tenants {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString("# TYPE yildiz_nodes gauge\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "yildiz_nodes{prefix=%q} %d\n", name, len(s.tenants[name].nodes))
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) storeTranslation(w http.ResponseWriter, r *http.Request, g *graph) {
	var in struct {
		Value interface{} `json:"value"`
		Data  interface{} `json:"data"`
		TTLD  bool        `json:"ttld"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	t := &translation{Identifier: identify(in.Value), Value: in.Value, Data: in.Data, TTLD: in.TTLD}
	g.translations[t.Identifier] = t
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) getTranslation(w http.ResponseWriter, r *http.Request, g *graph) {
	id := identify(r.PathValue("identifier"))
	t, found := g.translations[id]
	if !found {
		writeError(w, http.StatusNotFound, "translation not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTranslation(w http.ResponseWriter, r *http.Request, g *graph) {
	id := identify(r.PathValue("identifier"))
	if _, found := g.translations[id]; !found {
		writeError(w, http.StatusNotFound, "translation not found")
		return
	}
	delete(g.translations, id)
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request, g *graph) {
	var in struct {
		Identifier interface{} `json:"identifier"`
		Data       interface{} `json:"data"`
		TTLD       bool        `json:"ttld"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Identifier == nil {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	identifier := identify(in.Identifier)
	if _, exists := g.nodes[identifier]; exists {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("node %d already exists", identifier))
		return
	}
	n := &node{ID: g.id(), Identifier: identifier, Data: in.Data, TTLD: in.TTLD}
	g.nodes[identifier] = n
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request, g *graph) {
	identifier := identify(r.PathValue("identifier"))
	n, found := g.nodes[identifier]
	if !found {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request, g *graph) {
	identifier := identify(r.PathValue("identifier"))
	n, found := g.nodes[identifier]
	if !found {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}
	delete(g.nodes, identifier)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.LeftNodeID != n.ID && e.RightNodeID != n.ID {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

type edgeKey struct {
	LeftID   interface{} `json:"leftId"`
	RightID  interface{} `json:"rightId"`
	Relation string      `json:"relation"`
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request, g *graph) {
	var in struct {
		edgeKey
		Attributes interface{} `json:"attributes"`
		TTLD       bool        `json:"ttld"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	left, lok := asInt(in.LeftID)
	right, rok := asInt(in.RightID)
	if !lok || !rok {
		writeError(w, http.StatusBadRequest, "leftId and rightId must be node ids")
		return
	}
	e := g.addEdge(left, right, in.Relation, in.Attributes, in.TTLD, s.now().UnixMilli())
	writeJSON(w, http.StatusCreated, e)
}

func (g *graph) addEdge(left, right int64, relation string, attributes interface{}, ttld bool, at int64) *edge {
	e := &edge{
		ID:          g.id(),
		LeftNodeID:  left,
		RightNodeID: right,
		Relation:    relation,
		Attributes:  attributes,
		Depth:       1,
		TTLD:        ttld,
		CreatedAt:   at,
	}
	g.edges = append(g.edges, e)
	return e
}

func (g *graph) findEdge(left, right int64, relation string) (int, *edge) {
	for i, e := range g.edges {
		if e.LeftNodeID == left && e.RightNodeID == right && e.Relation == relation {
			return i, e
		}
	}
	return -1, nil
}

func (s *Server) getEdge(w http.ResponseWriter, r *http.Request, g *graph) {
	left, lok := pathInt(w, r, "left")
	if !lok {
		return
	}
	right, rok := pathInt(w, r, "right")
	if !rok {
		return
	}
	_, e := g.findEdge(left, right, r.PathValue("relation"))
	if e == nil {
		writeError(w, http.StatusNotFound, "edge not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request, g *graph) {
	left, lok := pathInt(w, r, "left")
	if !lok {
		return
	}
	right, rok := pathInt(w, r, "right")
	if !rok {
		return
	}
	i, e := g.findEdge(left, right, r.PathValue("relation"))
	if e == nil {
		writeError(w, http.StatusNotFound, "edge not found")
		return
	}
	g.edges = append(g.edges[:i], g.edges[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func (s *Server) changeDepth(delta int64) tenantHandler {
	return func(w http.ResponseWriter, r *http.Request, g *graph) {
		var in edgeKey
		if !readJSON(w, r, &in) {
			return
		}
		left, lok := asInt(in.LeftID)
		right, rok := asInt(in.RightID)
		if !lok || !rok {
			writeError(w, http.StatusBadRequest, "leftId and rightId must be node ids")
			return
		}
		_, e := g.findEdge(left, right, in.Relation)
		if e == nil {
			writeError(w, http.StatusNotFound, "edge not found")
			return
		}
		if e.Depth+delta >= 0 {
			e.Depth += delta
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) edgesBySide(side string) tenantHandler {
	return func(w http.ResponseWriter, r *http.Request, g *graph) {
		id, ok := pathInt(w, r, "id")
		if !ok {
			return
		}
		relation := r.PathValue("relation")

		edges := []*edge{}
		for _, e := range g.edges {
			if e.Relation != relation {
				continue
			}
			if (side != "right" && e.LeftNodeID == id) || (side != "left" && e.RightNodeID == id) {
				edges = append(edges, e)
			}
		}
		writeJSON(w, http.StatusOK, edges)
	}
}

func (s *Server) translatedEdgeInfo(w http.ResponseWriter, r *http.Request, g *graph) {
	var in struct {
		Values []interface{} `json:"values"`
	}
	if !readJSON(w, r, &in) {
		return
	}

	type info struct {
		Value      interface{} `json:"value"`
		Identifier int64       `json:"identifier"`
		Node       *node       `json:"node"`
		Edges      []*edge     `json:"edges"`
	}
	result := make([]info, 0, len(in.Values))
	for _, value := range in.Values {
		i := info{Value: value, Identifier: identify(value), Edges: []*edge{}}
		if n, found := g.nodes[i.Identifier]; found {
			i.Node = n
			for _, e := range g.edges {
				if e.LeftNodeID == n.ID || e.RightNodeID == n.ID {
					i.Edges = append(i.Edges, e)
				}
			}
		}
		result = append(result, i)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) upsertRelation(w http.ResponseWriter, r *http.Request, g *graph) {
	var in struct {
		LeftValue           interface{} `json:"leftNodeIdentifierVal"`
		RightValue          interface{} `json:"rightNodeIdentifierVal"`
		LeftNodeData        interface{} `json:"leftNodeData"`
		RightNodeData       interface{} `json:"rightNodeData"`
		TTLD                bool        `json:"ttld"`
		Relation            string      `json:"relation"`
		EdgeData            interface{} `json:"edgeData"`
		DepthBeforeCreation bool        `json:"depthBeforeCreation"`
		EdgeTime            int64       `json:"edgeTime"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.LeftValue == nil || in.RightValue == nil {
		writeError(w, http.StatusBadRequest, "both node identifier values are required")
		return
	}

	upsertNode := func(value, data interface{}) *node {
		identifier := identify(value)
		if n, found := g.nodes[identifier]; found {
			return n
		}
		n := &node{ID: g.id(), Identifier: identifier, Data: data, TTLD: in.TTLD}
		g.nodes[identifier] = n
		return n
	}
	left := upsertNode(in.LeftValue, in.LeftNodeData)
	right := upsertNode(in.RightValue, in.RightNodeData)

	var e *edge
	if !in.DepthBeforeCreation {
		if _, existing := g.findEdge(left.ID, right.ID, in.Relation); existing != nil {
			existing.Depth++
			e = existing
		}
	}
	if e == nil {
		e = g.addEdge(left.ID, right.ID, in.Relation, in.EdgeData, in.TTLD, in.EdgeTime)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leftNodeId":          left.ID,
		"rightNodeId":         right.ID,
		"leftNodeIdentifier":  left.Identifier,
		"rightNodeIdentifier": right.Identifier,
		"edgeId":              e.ID,
		"depth":               e.Depth,
	})
}

// rawQuery accepts any non-empty query and returns no rows; there are no
// tables to query.
func (s *Server) rawQuery(w http.ResponseWriter, r *http.Request, g *graph) {
	var in struct {
		Query        string      `json:"query"`
		Replacements interface{} `json:"replacements"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if in.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	writeJSON(w, http.StatusOK, []interface{}{})
}

// shortestPath runs a breadth-first search over edges from left to right.
func (s *Server) shortestPath(w http.ResponseWriter, r *http.Request, g *graph) {
	var in struct {
		Start interface{} `json:"start"`
		End   interface{} `json:"end"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	start, sok := asInt(in.Start)
	end, eok := asInt(in.End)
	if !sok || !eok {
		writeError(w, http.StatusBadRequest, "start and end must be node ids")
		return
	}

	prev := map[int64]int64{start: start}
	queue := []int64{start}
	for len(queue) > 0 && !hasKey(prev, end) {
		current := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.LeftNodeID == current && !hasKey(prev, e.RightNodeID) {
				prev[e.RightNodeID] = current
				queue = append(queue, e.RightNodeID)
			}
		}
	}

	path := []int64{}
	if hasKey(prev, end) {
		for at := end; ; at = prev[at] {
			path = append([]int64{at}, path...)
			if at == start {
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"path": path})
}

func hasKey(m map[int64]int64, k int64) bool {
	_, ok := m[k]
	return ok
}

// identify maps a node or translation value to its numeric identifier:
// integers are used as is, anything else is hashed.
func identify(v interface{}) int64 {
	if n, ok := asInt(v); ok {
		return n
	}
	h := fnv.New32a()
	switch value := v.(type) {
	case string:
		h.Write([]byte(value))
	default:
		data, _ := json.Marshal(value)
		h.Write(data)
	}
	return int64(h.Sum32())
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be numeric, got %q", name, raw))
		return 0, false
	}
	return n, true
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
