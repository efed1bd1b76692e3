package relay

// Kind identifies the file routes and the multipart field each one reads.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
	KindAudio    Kind = "audio"
)

// Kinds lists every file kind in route order.
var Kinds = []Kind{KindImage, KindDocument, KindAudio}

// FieldName is the multipart form field carrying the file.
func (k Kind) FieldName() string { return string(k) }

// Route is the HTTP path serving this kind.
func (k Kind) Route() string { return "/generate-from-" + string(k) }

// DefaultPrompt is used when the request carries no prompt.
func (k Kind) DefaultPrompt() string {
	return "Describe this uploaded " + string(k) + "."
}

func (k Kind) MissingFileMessage() string {
	switch k {
	case KindImage:
		return "Image file is required!"
	case KindDocument:
		return "Document file is required!"
	case KindAudio:
		return "Audio file is required!"
	default:
		return "File is required!"
	}
}

// ByReference reports whether the kind is handed to the provider file store
// when one exists. Other kinds are always inlined.
func (k Kind) ByReference() bool { return k == KindImage }
