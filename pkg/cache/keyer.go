package cache

// Keyer builds cache keys for each kind of cached artifact.
type Keyer interface {
	// SheetKey keys the raw CSV bytes downloaded from url.
	SheetKey(url string) string

	// DataKey keys the family data parsed from CSV bytes with the given hash.
	DataKey(sourceHash string) string

	// FrameKey keys a laid-out frame of the given data.
	FrameKey(dataHash string, opts FrameKeyOpts) string

	// ShareKey keys an encoded view state stored under a share id.
	ShareKey(id string) string
}

// FrameKeyOpts holds the inputs that change a laid-out frame.
type FrameKeyOpts struct {
	Focus       string   `json:"focus,omitempty"`
	Expanded    []string `json:"expanded,omitempty"`
	Patrilineal bool     `json:"patrilineal,omitempty"`
	State       string   `json:"state,omitempty"`
	DX          float64  `json:"dx"`
	DY          float64  `json:"dy"`
}

// DefaultKeyer produces the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SheetKey returns "sheet:<hash(url)>".
func (DefaultKeyer) SheetKey(url string) string {
	return hashKey("sheet", url)
}

// DataKey returns "data:<sourceHash>".
func (DefaultKeyer) DataKey(sourceHash string) string {
	return "data:" + sourceHash
}

// FrameKey returns "frame:<hash(dataHash, opts)>".
func (DefaultKeyer) FrameKey(dataHash string, opts FrameKeyOpts) string {
	return hashKey("frame", dataHash, opts)
}

// ShareKey returns "share:<id>".
func (DefaultKeyer) ShareKey(id string) string {
	return "share:" + id
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = DefaultKeyer{}
