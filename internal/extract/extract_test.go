package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muhammadolammi/joblens/internal/report"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Senior Go Engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Kubernetes </w:t></w:r><w:r><w:t>and Terraform</w:t></w:r></w:p>
    <w:p><w:r><w:t>Remote</w:t><w:tab/><w:t>EU</w:t><w:br/><w:t>Full time</w:t></w:r></w:p>
  </w:body>
</w:document>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename, mime string
		want           Format
		wantErr        bool
	}{
		{"cv.PDF", "", FormatPDF, false},
		{"cv.docx", "application/octet-stream", FormatDOCX, false},
		{"notes.txt", "", FormatText, false},
		{"upload", "application/pdf", FormatPDF, false},
		{"upload", "text/plain; charset=utf-8", FormatText, false},
		{"upload", MimeDOCX, FormatDOCX, false},
		{"cv.doc", "application/msword", "", true},
		{"cv.png", "image/png", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename+"|"+tt.mime, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.mime)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_Text(t *testing.T) {
	doc, err := Extract("jd.txt", "", []byte("\xef\xbb\xbfGo engineer\nKubernetes"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Text != "Go engineer\nKubernetes" {
		t.Fatalf("unexpected text %q", doc.Text)
	}
	if doc.Format != FormatText || doc.Filename != "jd.txt" {
		t.Fatalf("unexpected document metadata %+v", doc)
	}
}

func TestExtract_TextInvalidUTF8(t *testing.T) {
	doc, err := Extract("jd.txt", "", []byte("Go\xffengineer"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Text != "Go engineer" {
		t.Fatalf("unexpected text %q", doc.Text)
	}
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
	})

	doc, err := Extract("resume.docx", "", data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Senior Go Engineer\nKubernetes and Terraform\nRemote\tEU\nFull time"
	if doc.Text != want {
		t.Fatalf("docx text = %q, want %q", doc.Text, want)
	}
}

func TestExtract_DocxCorrupt(t *testing.T) {
	_, err := Extract("resume.docx", "", []byte("not a zip archive"))
	if err == nil {
		t.Fatal("expected error for corrupt docx")
	}
	if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("corrupt docx should be a parse error, got %v", err)
	}
}

func TestExtract_PDF(t *testing.T) {
	var buf bytes.Buffer
	err := report.Render(&buf, report.Report{
		ResumeFilename:         "resume.pdf",
		JobDescriptionFilename: "jd.pdf",
		MatchPercentage:        12.5,
		MissingKeywords:        []string{"kubernetes", "terraform"},
	})
	if err != nil {
		t.Fatalf("render fixture: %v", err)
	}

	doc, err := Extract("report.pdf", MimePDF, buf.Bytes())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Pages != 1 {
		t.Errorf("pages = %d, want 1", doc.Pages)
	}
	for _, want := range []string{"kubernetes", "terraform"} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("pdf text missing %q: %q", want, doc.Text)
		}
	}
}

func TestExtract_PDFCorrupt(t *testing.T) {
	if _, err := Extract("resume.pdf", "", []byte("%PDF-1.4 truncated")); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestExtract_Empty(t *testing.T) {
	_, err := Extract("blank.txt", "", []byte("  \n\t"))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}

	data := buildDocx(t, map[string]string{
		"word/document.xml":            `<w:document xmlns:w="x"><w:body><w:p/></w:body></w:document>`,
		"word/_rels/document.xml.rels": relsXML,
	})
	_, err = Extract("blank.docx", "", data)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument for blank docx, got %v", err)
	}
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := Extract("photo.jpg", "image/jpeg", []byte{0xff, 0xd8})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
