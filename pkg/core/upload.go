package core

// UploadMetadata describes an exported combat log sent to the web frontend.
type UploadMetadata struct {
	Campaign string
	// Clock is the campaign time of the export, in seconds.
	Clock int64
	Tag   string
}
