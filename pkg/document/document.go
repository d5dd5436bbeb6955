// Package document turns uploaded files into the page texts the board
// displays.
//
// Plain text files are supported: .txt, .text and .md. A form feed
// character starts a new page, the way print spoolers and `pr` paginate
// text. Files with a UTF-16 byte order mark are transcoded to UTF-8.
package document

import (
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/matzehuels/whiteboard/pkg/errors"
)

// PageBreak separates pages in a text upload.
const PageBreak = '\f'

// MaxSize bounds the size of an upload accepted by Extract.
const MaxSize = 16 << 20

var extensions = []string{".txt", ".text", ".md"}

// Extensions returns the accepted file extensions.
func Extensions() []string {
	return slices.Clone(extensions)
}

// Supported reports whether filename has an accepted extension.
// Matching is case-insensitive.
func Supported(filename string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(filename)))
}

// Extract returns the pages of an uploaded file. It always returns at
// least one page on success; an empty file is a single empty page.
//
// Unsupported extensions fail with ErrCodeInvalidFormat and the message
// "Invalid file format".
func Extract(filename string, data []byte) ([]string, error) {
	if err := check(filename, data); err != nil {
		return nil, err
	}
	text, err := decode(data)
	if err != nil {
		return nil, err
	}
	return Paginate(text), nil
}

func check(filename string, data []byte) error {
	if err := errors.ValidateUploadFilename(filename); err != nil {
		return err
	}
	if !Supported(filename) {
		return errors.New(errors.ErrCodeInvalidFormat, "Invalid file format")
	}
	if len(data) > MaxSize {
		return errors.New(errors.ErrCodeInvalidInput, "file too large (max %d MB)", MaxSize>>20)
	}
	return nil
}

// Paginate splits text into pages at form feeds. Line endings are
// normalized to \n and a trailing empty page is dropped.
func Paginate(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	pages := strings.Split(text, string(PageBreak))
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	for i, p := range pages {
		pages[i] = strings.TrimSuffix(p, "\n")
	}
	return pages
}

// decode strips a UTF-8 byte order mark and transcodes UTF-16 input that
// starts with a byte order mark. Invalid UTF-8 sequences become U+FFFD.
func decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode text")
	}
	return string(out), nil
}
