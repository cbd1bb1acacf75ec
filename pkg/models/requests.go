package models

type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest carries an optional role hint from the login form. The role
// returned to the client is always the stored one.
type LoginRequest struct {
	Credentials
	Role string `json:"role"`
}

type DetectRequest struct {
	Filepath  string   `json:"filepath"`
	Threshold *float64 `json:"threshold"`
}

type ReportRequest struct {
	Filename       string  `json:"filename"`
	ViolenceCount  int     `json:"violence_count"`
	BestConfidence float64 `json:"best_confidence"`
	BestTimestamp  string  `json:"best_timestamp"`
	AvgConfidence  float64 `json:"avg_confidence"`
	BestFramePath  string  `json:"best_frame_path"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	Filepath string `json:"filepath"`
	Filename string `json:"filename"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
