// Package resume turns a resume file on disk into either an inline model
// attachment or plain text for the directive.
package resume

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/spigell/recruitai/internal/job"
)

const (
	MaxSize = 10 << 20

	mimePDF  = "application/pdf"
	mimeText = "text/plain"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var ErrUnsupported = errors.New("unsupported resume format")

type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Load reads the file and sniffs its content type.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("resume %s is larger than %d bytes", path, MaxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return FromBytes(filepath.Base(path), data), nil
}

func FromBytes(name string, data []byte) *File {
	mediaType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return &File{Name: name, MIMEType: strings.TrimSpace(mediaType), Data: data}
}

// Inline reports whether the model accepts the file as an attachment.
func (f *File) Inline() bool {
	return f.MIMEType == mimePDF || f.MIMEType == mimeText || strings.HasPrefix(f.MIMEType, "image/")
}

// Text extracts the readable text of the resume.
func (f *File) Text() (string, error) {
	var (
		text string
		err  error
	)

	switch f.MIMEType {
	case mimeText:
		text = string(f.Data)
	case mimePDF:
		text, err = pdfText(f.Data)
	case mimeDocx:
		text, err = docxText(f.Data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, f.MIMEType)
	}
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", f.Name, err)
	}

	return strings.TrimSpace(text), nil
}

// Apply puts the resume into the draft, either as an attachment or, when
// asText is set or the format cannot be attached, as extracted text.
func Apply(d *job.Draft, f *File, asText bool) error {
	if f.Inline() && !asText {
		d.ResumeFile = &job.ResumeFile{
			MIMEType: f.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(f.Data),
		}
		return nil
	}

	text, err := f.Text()
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("resume %s contains no text", f.Name)
	}

	d.CandidateResume = text
	return nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return wordText(doc.Editable().GetContent())
}

// wordText keeps the runs of a WordprocessingML body, one paragraph per line.
func wordText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
