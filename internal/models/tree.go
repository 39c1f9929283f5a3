package models

// CategoryNode is a category together with its series, used for the public
// home page and the CLI tree view.
type CategoryNode struct {
	Category
	Series []SeriesNode `json:"series"`
}

// SeriesNode is a series together with its chapters.
type SeriesNode struct {
	Series
	Chapters []Chapter `json:"chapters"`
}
