package model

// SubtitleTrack describes one available subtitle track for a video.
type SubtitleTrack struct {
	Language      string
	AutoGenerated bool
}

// SubtitleCatalog maps language tags to the tracks a video offers, native
// and machine-generated alike.
type SubtitleCatalog map[string]SubtitleTrack
