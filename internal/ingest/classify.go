package ingest

// PartKind tags what a decoded body part contributes to ingestion.
type PartKind int

const (
	KindIgnore PartKind = iota
	KindPlainPatch
	KindBundle
	KindComment
)

// Classifier decides the kind of a part from its content type alone; the only
// body inspection is the footer equality check, which keeps the mailing list
// signature block from being stored as a comment.
type Classifier struct {
	PatchType   string
	BundleType  string
	CommentType string
	Footer      string
}

func (c Classifier) Classify(contentType, body string) PartKind {
	switch contentType {
	case c.PatchType:
		return KindPlainPatch
	case c.BundleType:
		return KindBundle
	case c.CommentType:
		if body == c.Footer {
			return KindIgnore
		}

		return KindComment
	default:
		return KindIgnore
	}
}
