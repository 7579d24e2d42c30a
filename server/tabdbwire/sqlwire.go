package tabdbwire

// ExecuteRequest is a single command request.
type ExecuteRequest struct {
	ID  uint64 `json:"id"`
	SQL string `json:"sql"`
}

// ExecuteResponse carries the rendered response for a request ID: "[OK]",
// "[OK]\n<table>" or "[ERROR]: <message>".
type ExecuteResponse struct {
	ID       uint64 `json:"id"`
	Response string `json:"response"`
}
