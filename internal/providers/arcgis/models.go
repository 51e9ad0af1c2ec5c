package arcgis

type FindAddressCandidatesResponse struct {
	SpatialReference struct {
		Wkid       int `json:"wkid"`
		LatestWkid int `json:"latestWkid"`
	} `json:"spatialReference"`
	Candidates []Candidate `json:"candidates"`
	Error      *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error,omitempty"`
}

type Candidate struct {
	Address    string         `json:"address"`
	Score      float64        `json:"score"`
	Location   *Location      `json:"location"` // nil when the candidate has no location
	Attributes map[string]any `json:"attributes"`
}

// Location is a candidate point in the response spatial reference (WGS84 by default)
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
