package dto

type UploadImagesResponse struct {
	Message string   `json:"message"`
	Paths   []string `json:"paths"`
}

type RequestDeleteUpload struct {
	Path string `json:"path" binding:"required"`
}
