package models

// CandidateSource records which page scan produced a candidate.
type CandidateSource string

const (
	SourceImg        CandidateSource = "img"
	SourceLazy       CandidateSource = "lazy"
	SourceBackground CandidateSource = "background"
)

// ImageCandidate is an absolute image URL found on the rendered page.
// Width and Height are the DOM size hints, 0 when unknown.
type ImageCandidate struct {
	URL    string
	Width  int
	Height int
	Source CandidateSource
}

// RetrievedImage is one image file stored in the output directory.
type RetrievedImage struct {
	SourcePath  string
	PixelWidth  int
	PixelHeight int
	// Index is the 1-based candidate position for fetched images and the
	// 0-based band index for screenshots.
	Index int
	// URL is empty for screenshots.
	URL string
}

// FetchMode is the image acquisition strategy of a run.
type FetchMode int

const (
	ModeDirect FetchMode = iota
	ModeFallback
)

func (m FetchMode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeFallback:
		return "fallback"
	}
	return "unknown"
}

// PipelineResult describes the outcome of one run. An empty
// OutputDocumentPath means no document was produced.
type PipelineResult struct {
	OutputDocumentPath string
	Mode               FetchMode
	Candidates         int
	Images             []RetrievedImage
}

// ScannedElement is one element reported by the in-page scan script.
type ScannedElement struct {
	URL             string  `json:"url,omitempty"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundImage string  `json:"backgroundImage,omitempty"`
}

// PageScan is the serializable result of the in-page image scan.
type PageScan struct {
	Images      []ScannedElement `json:"images"`
	Lazy        []ScannedElement `json:"lazy"`
	Backgrounds []ScannedElement `json:"backgrounds"`
}
