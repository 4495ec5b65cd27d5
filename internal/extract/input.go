package extract

import (
	"mime"
	"strings"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/recipe"
)

// SourceKind discriminates the extraction paths.
type SourceKind string

const (
	SourceText  SourceKind = "text"
	SourceImage SourceKind = "image"
	SourcePDF   SourceKind = "pdf"
)

// Input is a normalized extraction request: exactly one source, plus
// optional supplementary free text when the source is a file.
type Input struct {
	Kind     SourceKind
	Text     string
	FileData []byte
	FileMime string
}

// Normalize validates and classifies a raw submission before any network
// call. Rejections here are guaranteed to cost zero provider invocations.
func Normalize(text string, fileData []byte, fileMime string) (*Input, error) {
	text = strings.TrimSpace(text)

	if len(fileData) == 0 {
		if text == "" {
			return nil, recipe.NewFailure(recipe.EmptyInput, "no recipe text or file provided")
		}
		return &Input{Kind: SourceText, Text: text}, nil
	}

	mediaType := fileMime
	if parsed, _, err := mime.ParseMediaType(fileMime); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	switch {
	case mediaType == "application/pdf":
		return &Input{Kind: SourcePDF, Text: text, FileData: fileData, FileMime: mediaType}, nil
	case strings.HasPrefix(mediaType, "image/"):
		return &Input{Kind: SourceImage, Text: text, FileData: fileData, FileMime: mediaType}, nil
	default:
		return nil, recipe.NewFailure(recipe.UnsupportedMediaType,
			"unsupported file type "+mediaType+": only PDF and image uploads are accepted")
	}
}
