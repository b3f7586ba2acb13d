package entity

// PageImage is one rendered page of an image-bearing document, produced by
// the upstream page-rendering step. The pipeline treats the payload as
// opaque bytes.
type PageImage struct {
	Number   int    `json:"number"` // 1-based
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"` // e.g. "image/png"
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}
