// Package model defines the domain types for the receipted CLI.
//
// All entities here are transient: an ImageRef is reconstructed from the
// filesystem on every run, and a Document lives only between the inference
// response and the JSON file written next to the source image. There is no
// persistent state beyond the output files themselves.
package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ImageFormat identifies a supported receipt image format.
// The format is always inferred from the file extension — the file
// contents are never sniffed, matching the upstream API's tolerance
// for a merely advisory MIME type in the data URL.
type ImageFormat string

const (
	// FormatJPEG covers both the .jpg and .jpeg extensions.
	FormatJPEG ImageFormat = "jpeg"

	// FormatPNG is the .png extension.
	FormatPNG ImageFormat = "png"

	// FormatGIF is the .gif extension.
	FormatGIF ImageFormat = "gif"

	// FormatBMP is the .bmp extension.
	FormatBMP ImageFormat = "bmp"
)

// String returns the string representation of ImageFormat.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI messages.
func (f ImageFormat) String() string {
	return string(f)
}

// IsValid checks whether the ImageFormat value is one of the
// predefined supported formats.
func (f ImageFormat) IsValid() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatGIF, FormatBMP:
		return true
	default:
		return false
	}
}

// MIMEType returns the MIME type used in the base64 data URL sent
// to the inference API (e.g., "image/jpeg").
func (f ImageFormat) MIMEType() string {
	return "image/" + string(f)
}

// extensionFormats maps lowercase file extensions (including the leading
// dot, as returned by filepath.Ext) to their image format.
var extensionFormats = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
}

// FormatFromPath infers the ImageFormat from a file path's extension.
// The match is case-insensitive (UCTENKA.JPG is a JPEG).
// Returns ErrUnsupportedFormat wrapped with the offending extension
// when the extension is not in the supported set.
func FormatFromPath(path string) (ImageFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensionFormats[ext]
	if !ok {
		return "", fmt.Errorf("extension %q: %w", ext, ErrUnsupportedFormat)
	}
	return format, nil
}

// ImageRef is a receipt image selected for extraction: a filesystem path
// paired with the format inferred from its extension.
type ImageRef struct {
	// Path is the path to the image file, as discovered or as given
	// on the command line. It is not required to be absolute.
	Path string `json:"path"`

	// Format is the image format inferred from the file extension.
	Format ImageFormat `json:"format"`
}

// BaseName returns the file name without directory or extension
// (e.g., "uctenka_001" for "scans/uctenka_001.jpg").
func (r ImageRef) BaseName() string {
	name := filepath.Base(r.Path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// OutputPath returns the path of the JSON file the extraction result is
// written to: the image's base name with a .json extension, in the same
// directory as the image.
func (r ImageRef) OutputPath() string {
	return filepath.Join(filepath.Dir(r.Path), r.BaseName()+".json")
}

// Document is the schema-free extraction result returned by the model.
// The expected keys (companyName, vatNumber, priceWithoutVAT, vat,
// vatRate, priceIncludingVAT, dateOfSale) are a prompt convention,
// not an enforced contract — the document's shape is whatever the
// model returned as valid JSON.
type Document map[string]any
