package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lu4p/cat"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeODT  = "application/vnd.oasis.opendocument.text"
	mimeRTF  = "text/rtf"

	minPrintableRun = 4
)

type extraction struct {
	text   string
	mime   string
	binary bool
}

// extractText picks an extractor from the detected content type. Formats
// without a proper extractor, and extractor failures, fall back to pulling
// printable runs out of the raw bytes.
func (p *Pipeline) extractText(content []byte) extraction {
	mt := mimetype.Detect(content)
	out := extraction{mime: mt.String(), binary: true}

	var err error
	switch {
	case mt.Is(mimePDF):
		out.text, err = p.extractPDF(content)
	case mt.Is(mimeDOCX):
		out.text, err = extractWithCat(content, ".docx")
	case mt.Is(mimeODT):
		out.text, err = extractWithCat(content, ".odt")
	case mt.Is(mimeRTF):
		out.text, err = extractWithCat(content, ".rtf")
	case isText(mt):
		out.text = string(content)
		out.binary = false
		return out
	default:
		out.text = printableRuns(content)
		return out
	}

	if err != nil || strings.TrimSpace(out.text) == "" {
		p.logger.Warn("extractor gave nothing usable, scanning raw bytes", "mime", out.mime, "error", err)
		out.text = printableRuns(content)
	}
	return out
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func (p *Pipeline) extractPDF(content []byte) (string, error) {
	f, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	numPages := f.NumPage()
	p.logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := protectExtract(page)
		if err != nil {
			// keep the pages that did parse
			p.logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n\n"), nil
}

// protectExtract bounds a single page; malformed content streams can make the
// pdf reader spin or panic.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("pdf page panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("pdf page extraction timeout")
	}
}

// extractWithCat hands office documents to cat, which picks its reader by
// file extension, so the bytes go through a temp file.
func extractWithCat(content []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "ingest-*"+ext)
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	text, err := cat.File(f.Name())
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", ext, err)
	}
	return text, nil
}

// printableRuns keeps runs of at least minPrintableRun printable characters,
// enough to recover text embedded in unknown binary formats.
func printableRuns(content []byte) string {
	var out, run strings.Builder
	runLen := 0
	flush := func() {
		if trimmed := strings.TrimSpace(run.String()); runLen >= minPrintableRun && trimmed != "" {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(trimmed)
		}
		run.Reset()
		runLen = 0
	}

	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		content = content[size:]
		if r != utf8.RuneError && (unicode.IsPrint(r) || r == '\n' || r == '\t') {
			run.WriteRune(r)
			runLen++
			continue
		}
		flush()
	}
	flush()
	return out.String()
}
