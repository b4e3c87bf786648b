package extraction

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractTextRejectsUnknownMediaType(t *testing.T) {
	_, err := ExtractText([]byte("hello"), "text/plain")
	if err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractDocxParagraphs(t *testing.T) {
	doc := buildDocx(t, `<w:document><w:body>`+
		`<w:p><w:r><w:t>Jean Dupont</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Chef de projet, </w:t></w:r><w:r><w:t>9 ans</w:t></w:r></w:p>`+
		`<w:p></w:p>`+
		`<w:p><w:r><w:t>Paris</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	got, err := ExtractText(doc, MediaTypeDOCX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Jean Dupont\nChef de projet, 9 ans\nParis"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractDocxIgnoresNonTextElements(t *testing.T) {
	doc := buildDocx(t, `<w:document><w:body>`+
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>Titre</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	got, err := ExtractText(doc, MediaTypeDOCX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Titre" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractDocxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/styles.xml")
	f.Write([]byte("<styles/>"))
	zw.Close()

	if _, err := ExtractText(buf.Bytes(), MediaTypeDOCX); err == nil {
		t.Fatal("expected an error for an archive without word/document.xml")
	}
}

func TestExtractDocxCorruptArchive(t *testing.T) {
	if _, err := ExtractText([]byte("definitely not a zip"), MediaTypeDOCX); err == nil {
		t.Fatal("expected an error for a corrupt archive")
	}
}

func TestExtractPdfCorruptBuffer(t *testing.T) {
	if _, err := ExtractText([]byte("%PDF-1.4 truncated"), MediaTypePDF); err == nil {
		t.Fatal("expected an error for a corrupt pdf")
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	got := normalizeWhitespace("  a  \n\n\n b\n   \nc  ")
	if got != "a\nb\nc" {
		t.Fatalf("got %q", got)
	}
}
