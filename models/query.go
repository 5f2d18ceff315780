package models

// QueryRequest is the body of POST /search.
type QueryRequest struct {
	Query        string `json:"query" binding:"required"`
	ResponseType string `json:"response_type"`
}

// ResponseMode is the closed set of answer strategies. The stringly-typed
// response_type from the request is parsed into a mode exactly once at the
// HTTP boundary.
type ResponseMode int

const (
	// ModeKnowledgeOnly answers from the model's general knowledge without
	// consulting the vector store.
	ModeKnowledgeOnly ResponseMode = iota
	// ModeRetrievalAugmented retrieves matching chunks first and grounds the
	// answer in them.
	ModeRetrievalAugmented
)

// ParseResponseMode maps the wire value to a mode. Only the exact string
// "llm" selects knowledge-only answering; every other value (including
// empty) routes through retrieval.
func ParseResponseMode(s string) ResponseMode {
	if s == "llm" {
		return ModeKnowledgeOnly
	}
	return ModeRetrievalAugmented
}

func (m ResponseMode) String() string {
	if m == ModeKnowledgeOnly {
		return "llm"
	}
	return "agent"
}

// SearchResult is one ranked chunk returned by the retrieval service.
// Results are ordered by descending Score (cosine similarity of unit
// vectors, higher is better).
type SearchResult struct {
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
	PageNumber int     `json:"page_number"`
	FileName   string  `json:"file_name"`
}
