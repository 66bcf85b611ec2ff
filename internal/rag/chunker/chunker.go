package chunker

import (
	"strings"
	"unicode"

	"github.com/akolanti/GradeRAG/internal/config"
	"github.com/akolanti/GradeRAG/pkg/logger_i"
)

type Options struct {
	Unit     string // config.ChunkUnitCharacters or config.ChunkUnitWords
	Size     int
	Overlap  int
	MaxRunes int
}

type Chunker struct {
	opts   Options
	logger *logger_i.Logger
}

func New(opts Options) *Chunker {
	if opts.Unit != config.ChunkUnitWords {
		opts.Unit = config.ChunkUnitCharacters
	}
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = config.MaxChunkRunes
	}
	if opts.Size <= 0 {
		opts.Size = config.DefaultChunkSize
		if opts.Unit == config.ChunkUnitWords {
			opts.Size = config.DefaultWordChunk
		}
	}
	if opts.Unit == config.ChunkUnitCharacters && opts.Size > opts.MaxRunes {
		opts.Size = opts.MaxRunes
	}
	if opts.Overlap < 0 {
		opts.Overlap = 0
	}
	if opts.Overlap >= opts.Size {
		opts.Overlap = opts.Size / 10
	}
	return &Chunker{opts: opts, logger: logger_i.NewLogger("chunker")}
}

func FromConfig(cfg config.ChunkerConfig) *Chunker {
	return New(Options{
		Unit:     cfg.Unit,
		Size:     cfg.Size,
		Overlap:  cfg.Overlap,
		MaxRunes: cfg.MaxChunkRunes,
	})
}

func (c *Chunker) Options() Options {
	return c.opts
}

// Split cuts text into ordered, overlapping chunks. Empty text gives no
// chunks; a splitter failure gives the whole text back as a single chunk.
func (c *Chunker) Split(text string) (chunks []string) {
	clean := Sanitize(text)
	if clean == "" {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("splitter failed, keeping document as one chunk", "panic", r, "runes", len([]rune(clean)))
			chunks = hardWindows([]rune(clean), c.opts.MaxRunes)
		}
	}()

	var parts []string
	if c.opts.Unit == config.ChunkUnitWords {
		parts = splitWords(clean, c.opts.Size, c.opts.Overlap)
	} else {
		parts = splitCharacters([]rune(clean), c.opts.Size, c.opts.Overlap)
	}

	chunks = make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, c.bound(p)...)
	}
	if len(chunks) == 0 {
		return c.bound(clean)
	}
	return chunks
}

// Sanitize repairs invalid utf-8, folds line endings and strips control
// characters other than newline and tab.
func Sanitize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return '\n'
		case r == '\uFEFF' || unicode.IsControl(r):
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}

func splitCharacters(runes []rune, size int, overlap int) []string {
	n := len(runes)
	if n <= size {
		return []string{string(runes)}
	}

	// never cut so early that the next window could not move forward
	minCut := size / 2
	if minCut < overlap+1 {
		minCut = overlap + 1
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + size
		if end >= n {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		end = cutPoint(runes, start+minCut, end)
		chunks = append(chunks, string(runes[start:end]))

		next := wordStart(runes, end-overlap, start, overlap)
		if next <= start {
			next = end - overlap
		}
		start = next
	}
	return chunks
}

// cutPoint returns the position just after the last whitespace in
// [floor, end), or end when the window has none.
func cutPoint(runes []rune, floor int, end int) int {
	for i := end - 1; i >= floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

// wordStart walks pos back to the beginning of the word it lands in, giving
// up after maxBack runes so long unbroken runs keep the plain overlap.
func wordStart(runes []rune, pos int, floor int, maxBack int) int {
	limit := pos - maxBack
	if limit <= floor {
		limit = floor + 1
	}
	for i := pos; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return pos
}

func splitWords(text string, size int, overlap int) []string {
	words := strings.Fields(text)
	if len(words) <= size {
		return []string{strings.Join(words, " ")}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// bound re-splits a piece longer than MaxRunes into overlapping character
// windows. Word chunks of unspaced scripts such as Thai end up here.
func (c *Chunker) bound(p string) []string {
	r := []rune(p)
	if len(r) <= c.opts.MaxRunes {
		return []string{p}
	}
	overlap := c.opts.Overlap
	if c.opts.Unit == config.ChunkUnitWords {
		overlap = config.DefaultChunkOverlap
	}
	if overlap >= c.opts.MaxRunes/2 {
		overlap = c.opts.MaxRunes / 10
	}
	return splitCharacters(r, c.opts.MaxRunes, overlap)
}

// hardWindows cuts runes into consecutive windows of at most limit runes.
func hardWindows(runes []rune, limit int) []string {
	if limit <= 0 || len(runes) <= limit {
		return []string{string(runes)}
	}
	var out []string
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}
