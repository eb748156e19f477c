package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/dmitrijs2005/camfeed/internal/common"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/normalize"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
	"golang.org/x/net/html/charset"
)

// ParseError reports malformed input. It matches common.ErrParse and the
// underlying cause.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{common.ErrParse, e.Err} }

// Extractor reads an XML stream and yields one DeviceRecord per closed
// container element.
type Extractor struct {
	dec     *xml.Decoder
	session *Session
	norm    *normalize.Normalizer
	err     error
}

// NewExtractor wraps r. Documents declaring a non UTF-8 encoding are decoded
// through x/net/html/charset.
func NewExtractor(r io.Reader, s *schema.Schema, n *normalize.Normalizer) *Extractor {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	return &Extractor{
		dec:     dec,
		session: NewSession(s),
		norm:    n,
	}
}

// Next returns the next record, io.EOF when the stream ended cleanly, or a
// *ParseError. Errors are sticky.
func (e *Extractor) Next() (models.DeviceRecord, error) {
	if e.err != nil {
		return models.DeviceRecord{}, e.err
	}

	for {
		tok, err := e.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				e.err = io.EOF
			} else {
				e.err = &ParseError{Offset: e.dec.InputOffset(), Err: err}
			}
			e.session.Reset()
			return models.DeviceRecord{}, e.err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			e.session.Open(t.Name.Local)
		case xml.EndElement:
			if captured, done := e.session.Close(t.Name.Local); done {
				return e.norm.Normalize(captured), nil
			}
		case xml.CharData:
			e.session.Text(t)
		}
	}
}

// All iterates over the remaining records. A parse error is yielded once as
// the final element.
func (e *Extractor) All() iter.Seq2[models.DeviceRecord, error] {
	return func(yield func(models.DeviceRecord, error) bool) {
		for {
			rec, err := e.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}
