package metadata

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	dcNamespace  = "http://purl.org/dc/elements/1.1/"
	rdfNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

var xmpHeader = []byte("http://ns.adobe.com/xap/1.0/\x00")

// tagPattern filters out hierarchical and numeric keywords.
var tagPattern = regexp.MustCompile(`^[A-z].+`)

// ErrNoXMP means the file has no XMP packet at all.
var ErrNoXMP = errors.New("no xmp packet")

// FindXMP returns the XMP packet embedded in a JPEG APP1 segment.
func FindXMP(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, errors.New("xmp: not a jpeg stream")
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("xmp: bad marker at offset %d", pos)
		}
		marker := data[pos+1]
		// Fill bytes.
		if marker == 0xFF {
			pos++
			continue
		}
		// Start of scan or end of image: no more metadata segments.
		if marker == 0xDA || marker == 0xD9 {
			break
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return nil, fmt.Errorf("xmp: truncated segment at offset %d", pos)
		}
		payload := data[pos+4 : pos+2+length]
		if marker == 0xE1 && bytes.HasPrefix(payload, xmpHeader) {
			return payload[len(xmpHeader):], nil
		}
		pos += 2 + length
	}

	return nil, ErrNoXMP
}

// ReadXMPTags returns the dc:subject keywords of the image's XMP packet.
// The result is never nil.
func ReadXMPTags(data []byte) ([]string, error) {
	packet, err := FindXMP(data)
	if err != nil {
		return []string{}, err
	}
	return parseSubjects(packet)
}

func parseSubjects(packet []byte) ([]string, error) {
	tags := []string{}
	dec := xml.NewDecoder(bytes.NewReader(packet))

	inSubject := false
	inItem := false
	var item strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tags, fmt.Errorf("xmp: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == dcNamespace && t.Name.Local == "subject":
				inSubject = true
			case inSubject && t.Name.Space == rdfNamespace && t.Name.Local == "li":
				inItem = true
				item.Reset()
			}
		case xml.CharData:
			if inItem {
				item.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Space == dcNamespace && t.Name.Local == "subject":
				inSubject = false
			case inItem && t.Name.Space == rdfNamespace && t.Name.Local == "li":
				inItem = false
				if tag := strings.TrimSpace(item.String()); tagPattern.MatchString(tag) {
					tags = append(tags, tag)
				}
			}
		}
	}

	return tags, nil
}
