package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind classifies a scanned file. The kind is resolved exactly once at scan
// time from the configured extension table and never re-derived.
type Kind int

const (
	KindOther Kind = iota
	KindStill
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindStill:
		return "still"
	case KindVideo:
		return "video"
	default:
		return "other"
	}
}

// MediaFile describes one scanned file. Immutable once the scan returns.
type MediaFile struct {
	Path      string
	Dir       string
	Base      string // file name without extension, as found on disk
	Ext       string // extension with leading dot, original case
	Kind      Kind
	SizeBytes int64
}

// Key addresses the same-directory index.
type Key struct {
	Dir  string
	Base string
}

// BaseKey returns the NFC-normalized form of a base name used for index
// lookups, so decomposed (macOS NFD) and precomposed spellings of the same
// name match each other.
func BaseKey(base string) string {
	return norm.NFC.String(base)
}

// Classifier maps extensions to kinds. Lookup is case-insensitive.
type Classifier struct {
	kinds map[string]Kind
}

// NewClassifier builds a Classifier from two extension sets. Extensions are
// expected dot-prefixed and lowercased (config normalization guarantees it).
func NewClassifier(stills, videos []string) *Classifier {
	kinds := make(map[string]Kind, len(stills)+len(videos))
	for _, ext := range stills {
		kinds[ext] = KindStill
	}
	for _, ext := range videos {
		kinds[ext] = KindVideo
	}
	return &Classifier{kinds: kinds}
}

// Classify returns the kind for a file name's extension.
func (c *Classifier) Classify(name string) Kind {
	ext := strings.ToLower(extOf(name))
	if ext == "" {
		return KindOther
	}
	if kind, ok := c.kinds[ext]; ok {
		return kind
	}
	return KindOther
}

func extOf(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}

// Index is the in-memory result of a scan. Stills and videos are reachable
// through a composite (directory, base) key for same-directory matching and
// through the base name alone for cross-directory matching. Files preserves
// scan order for stable leftover numbering.
type Index struct {
	Stills map[Key][]*MediaFile
	Videos map[Key][]*MediaFile

	StillsByBase map[string][]*MediaFile
	VideosByBase map[string][]*MediaFile

	Files  []*MediaFile // all media files (stills + videos) in scan order
	Others []*MediaFile // unclassified files in scan order

	TotalScanned int
	Warnings     []Warning
}

// Warning records a non-fatal scan problem.
type Warning struct {
	Path   string
	Reason string
}

func newIndex() *Index {
	return &Index{
		Stills:       make(map[Key][]*MediaFile),
		Videos:       make(map[Key][]*MediaFile),
		StillsByBase: make(map[string][]*MediaFile),
		VideosByBase: make(map[string][]*MediaFile),
	}
}

func (idx *Index) add(file *MediaFile) {
	key := Key{Dir: file.Dir, Base: BaseKey(file.Base)}
	baseKey := BaseKey(file.Base)

	switch file.Kind {
	case KindStill:
		idx.Stills[key] = append(idx.Stills[key], file)
		idx.StillsByBase[baseKey] = append(idx.StillsByBase[baseKey], file)
		idx.Files = append(idx.Files, file)
	case KindVideo:
		idx.Videos[key] = append(idx.Videos[key], file)
		idx.VideosByBase[baseKey] = append(idx.VideosByBase[baseKey], file)
		idx.Files = append(idx.Files, file)
	default:
		idx.Others = append(idx.Others, file)
	}
}
