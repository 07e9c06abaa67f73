package types

// Detection is the outcome of scanning one file.
type Detection struct {
	Path      string     `json:"path"`
	BlobID    BlobID     `json:"blob_id"`
	Size      int64      `json:"size"`
	Category  Category   `json:"category"`
	Signature *Signature `json:"signature,omitempty"` // nil when nothing matched
	Location  *Location  `json:"location,omitempty"`  // nil when unknown or nothing matched
}

// NoDetection returns the outcome for a file in which no signature matched.
func NoDetection(path string, content []byte) *Detection {
	return &Detection{
		Path:     path,
		BlobID:   ComputeBlobID(content),
		Size:     int64(len(content)),
		Category: CategoryNone,
	}
}

// NewDetection returns the outcome for a file in which sig matched at loc.
func NewDetection(path string, content []byte, sig *Signature, loc *Location) *Detection {
	return &Detection{
		Path:      path,
		BlobID:    ComputeBlobID(content),
		Size:      int64(len(content)),
		Category:  sig.Category,
		Signature: sig,
		Location:  loc,
	}
}

// Suspicious reports whether a signature matched.
func (d *Detection) Suspicious() bool {
	return d.Category.Suspicious()
}

// SignatureID returns the matched signature's ID or "" for no detection.
func (d *Detection) SignatureID() string {
	if d.Signature == nil {
		return ""
	}
	return d.Signature.ID
}
