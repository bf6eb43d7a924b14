package domain

// Snippet is a window of file text around one occurrence of a query term.
type Snippet struct {
	// Text is the window with newlines collapsed to spaces and trimmed.
	Text string `json:"text"`

	// Term is the query term whose match produced the window.
	Term string `json:"term"`

	// Offset is the byte offset of the match within the file content.
	Offset int `json:"offset"`
}
