package models

// Rect is a grid rectangle with 0-based anchor coordinates.
// For one-cell anchors To equals From.
type Rect struct {
	FromCol int `json:"from_col"`
	FromRow int `json:"from_row"`
	ToCol   int `json:"to_col"`
	ToRow   int `json:"to_row"`
}

// DisplayRow returns the 1-based row the rectangle starts on.
func (r Rect) DisplayRow() int {
	return r.FromRow + 1
}

// Anchor is a drawing object's attachment to the cell grid.
type Anchor struct {
	// Seq is the 1-based document-order index within the parsed fragments.
	Seq int `json:"seq"`
	// Key is the sequential label ("image_1", "image_2", ...).
	Key string `json:"key"`
	// Kind is "twoCell" or "oneCell".
	Kind string `json:"kind"`
	// Content is the anchored object: pic, chart, shape, group or connector.
	Content string `json:"content,omitempty"`
	// Name is the non-visual drawing name of the anchored object.
	Name string `json:"name,omitempty"`
	// Rect is the grid rectangle.
	Rect Rect `json:"rect"`
	// ExtCX and ExtCY are the declared extent in EMU (one-cell anchors only).
	ExtCX int64 `json:"ext_cx,omitempty"`
	ExtCY int64 `json:"ext_cy,omitempty"`
	// RelID is the relationship id of the picture blip or chart.
	RelID string `json:"rel_id,omitempty"`
	// Part is the archive path of the drawing fragment.
	Part string `json:"part,omitempty"`
}

// ImageRecord represents an embedded raster image.
type ImageRecord struct {
	// Filename is the output file name assigned by the extractor.
	Filename string `json:"filename"`
	// Format is the image format (png, jpeg, ...).
	Format string `json:"format"`
	// Source is the archive path for images found by scanning the media folder.
	Source string `json:"source,omitempty"`
	// Anchor is the cell the picture is attached to, when known.
	Anchor string `json:"anchor,omitempty"`
	// Width and Height are pixel dimensions, nil when unknown.
	Width  *int `json:"width"`
	Height *int `json:"height"`
	// Position is the grid rectangle, nil when unresolved.
	Position *Rect `json:"position"`
	// Data is the image blob; it is written by the caller, not serialized.
	Data []byte `json:"-"`
}
