package charset

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// codec decodes a whole document to UTF-8 or fails.
type codec interface {
	decode(b []byte) ([]byte, error)
}

// strictUTF8 rejects any invalid sequence.
type strictUTF8 struct{}

func (strictUTF8) decode(b []byte) ([]byte, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	out, n, err := transform.Bytes(encoding.UTF8Validator, b)
	if err != nil {
		return nil, fmt.Errorf("invalid utf-8 at byte %d: %w", n, err)
	}
	return out, nil
}

// singleByte decodes a charmap and rejects bytes the code page leaves
// undefined (e.g. 0x81 in Windows-1254).
type singleByte struct{ cm *charmap.Charmap }

func (s singleByte) decode(b []byte) ([]byte, error) {
	for i, c := range b {
		if s.cm.DecodeByte(c) == '\uFFFD' {
			return nil, fmt.Errorf("byte 0x%02x at %d undefined in %s", c, i, s.cm)
		}
	}
	out, _, err := transform.Bytes(s.cm.NewDecoder(), b)
	return out, err
}

// utf16 honors a BOM and falls back to little-endian.
type utf16 struct{}

func (utf16) decode(b []byte) ([]byte, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("utf-16 input has odd length %d", len(b))
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, b)
	return out, err
}

var codecs = map[string]codec{
	"utf-8":        strictUTF8{},
	"utf8":         strictUTF8{},
	"latin-1":      singleByte{charmap.ISO8859_1},
	"latin1":       singleByte{charmap.ISO8859_1},
	"iso-8859-1":   singleByte{charmap.ISO8859_1},
	"iso-8859-9":   singleByte{charmap.ISO8859_9},
	"latin-5":      singleByte{charmap.ISO8859_9},
	"latin5":       singleByte{charmap.ISO8859_9},
	"cp1254":       singleByte{charmap.Windows1254},
	"windows-1254": singleByte{charmap.Windows1254},
	"cp1252":       singleByte{charmap.Windows1252},
	"windows-1252": singleByte{charmap.Windows1252},
	"utf-16":       utf16{},
	"utf16":        utf16{},
}

// Supported reports whether name is a known encoding (case-insensitive).
func Supported(name string) bool {
	_, ok := codecs[canonical(name)]
	return ok
}

// Decode converts b from the named encoding to UTF-8.
func Decode(b []byte, name string) ([]byte, error) {
	c, ok := codecs[canonical(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return c.decode(b)
}

func canonical(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
