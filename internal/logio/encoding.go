package logio

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is assumed when no input encoding is configured.
const DefaultEncoding = "utf-8"

// Encodings lists the accepted input encoding names.
var Encodings = []string{"utf-8", "latin1", "windows-1252"}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unknown input encoding %q (known: %s)", name, strings.Join(Encodings, ", "))
}

// CheckEncoding reports whether name is an accepted encoding.
func CheckEncoding(name string) error {
	_, err := lookupEncoding(name)
	return err
}

// Decode wraps r so that it yields UTF-8. A leading byte order mark is dropped
// for UTF-8 input.
func Decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return transform.NewReader(r, unicode.BOMOverride(transform.Nop)), nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
