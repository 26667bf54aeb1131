package models

// ImageData is a request-scoped image payload extracted by the interception
// middleware and handed to the vision tool. It lives for exactly one request
// and must never cross into another.
type ImageData struct {
	// Bytes is the base64-encoded image payload.
	Bytes string `json:"bytes"`
	// Format is the declared image format (jpeg, png, webp, gif).
	Format string `json:"format"`
}
