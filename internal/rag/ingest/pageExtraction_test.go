package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/akolanti/GradeRAG/internal/domain/gradingModel"
)

const answerSentence = "Photosynthesis converts light energy into chemical energy"

// onePagePDF writes an uncompressed single page pdf that shows text in
// Helvetica, with a correct xref table.
func onePagePDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

// tinyDocx zips a minimal word document. The document part goes first so
// content sniffing sees "word/" in the first entry.
func tinyDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}
	files := []struct{ name, data string }{
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`},
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(f.data)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func ingestBytes(t *testing.T, f *fixture, id string, content []byte) (gradingModel.IngestionResult, []gradingModel.SearchHit) {
	t.Helper()
	req := modelAnswer(id, "")
	req.Content = content
	result, err := f.pipeline.Ingest(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	return result, f.storedChunks(t, gradingModel.KindModelAnswer, id)
}

func TestExtractText_PDF(t *testing.T) {
	f := mockFixture()
	out := f.pipeline.extractText(onePagePDF(answerSentence))

	if out.mime != mimePDF {
		t.Fatalf("detected %q", out.mime)
	}
	if strings.TrimSpace(out.text) != answerSentence {
		t.Errorf("extracted %q", out.text)
	}
}

func TestIngest_PDF(t *testing.T) {
	f := mockFixture()
	result, hits := ingestBytes(t, f, "doc-pdf", onePagePDF(answerSentence))

	if !result.Success || !result.UsedBinaryExtraction {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(hits) != 1 || !strings.Contains(hits[0].Content, answerSentence) {
		t.Fatalf("pdf text not stored: %+v", hits)
	}
	// the raw scan would also pick up the pdf syntax around the text
	if strings.Contains(hits[0].Content, "endobj") || strings.Contains(hits[0].Content, "Tj") {
		t.Errorf("pdf syntax leaked into the text: %q", hits[0].Content)
	}
}

func TestIngest_CorruptPDFFallsBackToPrintableRuns(t *testing.T) {
	f := mockFixture()
	content := []byte("%PDF-1.4\n\x00\x01" + answerSentence + "\x00\xff truncated before any xref")

	result, hits := ingestBytes(t, f, "doc-broken", content)

	if !result.Success || !result.UsedBinaryExtraction {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(hits) != 1 || !strings.Contains(hits[0].Content, answerSentence) {
		t.Fatalf("printable text not recovered: %+v", hits)
	}
	if !strings.Contains(hits[0].Content, "%PDF-1.4") {
		t.Errorf("expected the raw byte scan, got %q", hits[0].Content)
	}
}

func TestIngest_Docx(t *testing.T) {
	f := mockFixture()
	content := tinyDocx(t, answerSentence, "พืชใช้แสงสร้างอาหาร")

	out := f.pipeline.extractText(content)
	if out.mime != mimeDOCX {
		t.Fatalf("detected %q", out.mime)
	}

	result, hits := ingestBytes(t, f, "doc-docx", content)
	if !result.Success || !result.UsedBinaryExtraction {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(hits) != 1 {
		t.Fatalf("expected one chunk, got %d", len(hits))
	}
	text := hits[0].Content
	if !strings.Contains(text, answerSentence) || !strings.Contains(text, "พืชใช้แสงสร้างอาหาร") {
		t.Errorf("docx paragraphs missing: %q", text)
	}
	if strings.Contains(text, "w:t") {
		t.Errorf("docx markup leaked into the text: %q", text)
	}
}
