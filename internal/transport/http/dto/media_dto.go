package dto

type MessageImageUploadRequest struct {
	ContentType string `json:"content_type"`
}

type MessageImageUploadResponse struct {
	ObjectKey    string `json:"object_key"`
	UploadURL    string `json:"upload_url"`
	ExpiresInSec int64  `json:"expires_in_sec"`
}
