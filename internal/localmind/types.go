package localmind

// Document is one stored document as reported by the server.
type Document struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type UploadResponse struct {
	Success  bool      `json:"success"`
	Document *Document `json:"document"`
}

type FolderListResponse struct {
	Files []Document `json:"files"`
}
