package statusapi

// statusResponse is the wire schema of the maintenance status endpoint:
//
//	{"success": true, "data": {"maintenance": bool, "message": string, "timestamp": RFC3339}}
//
// Anything that does not match this shape is a schema failure.
type statusResponse struct {
	Success bool       `json:"success"`
	Data    statusData `json:"data"`
}

type statusData struct {
	Maintenance bool   `json:"maintenance"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
}
