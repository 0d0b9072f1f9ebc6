package vision

import "errors"

// ErrNoImage indicates the model responded without any inline image payload.
// Text-only output is not a usable placement result.
var ErrNoImage = errors.New("vision: response contains no image")

// DefaultDescription is used when the model returns no text part.
const DefaultDescription = "No description available."

// Image is an extracted inline image payload with its media type.
type Image struct {
	Data []byte
	MIME string
}

// ExtractResult walks the response parts once and separates them into the
// output image and the output description. The first image part wins; the
// last text part wins, since the model may emit a draft note before the final
// one. The media type defaults to image/png when the model omits it.
func ExtractResult(resp Response) (Image, string, error) {
	var (
		img  Image
		text string
	)
	for _, part := range resp.Parts {
		if part.IsImage() {
			if len(img.Data) == 0 {
				img = Image{Data: part.Data, MIME: part.MIME}
			}
			continue
		}
		if part.Text != "" {
			text = part.Text
		}
	}

	if len(img.Data) == 0 {
		return Image{}, "", ErrNoImage
	}
	if img.MIME == "" {
		img.MIME = "image/png"
	}
	if text == "" {
		text = DefaultDescription
	}
	return img, text, nil
}

// ExtractImage returns the first inline image of the response, for calls that
// requested an image-only modality.
func ExtractImage(resp Response) (Image, error) {
	img, _, err := ExtractResult(resp)
	return img, err
}
