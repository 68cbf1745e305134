package convert

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Quality captures extraction diagnostics for the chosen cascade output.
// It is observability data, not a gate.
type Quality struct {
	PageCount       int     `json:"pageCount"`
	CharsPerPage    float64 `json:"charsPerPage"`
	PrintableRatio  float64 `json:"printableRatio"`
	WordlikeRatio   float64 `json:"wordlikeRatio"`
	HasImageStreams bool    `json:"hasImageStreams"`
}

// InspectPDF reads PDF structure via pdfcpu: page count and whether any page
// carries image XObjects.
func InspectPDF(path string) (pageCount int, hasImages bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, false, fmt.Errorf("pdfcpu read: %w", err)
	}

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
			hasImages = true
			break
		}
	}
	return ctx.PageCount, hasImages, nil
}

// ScoreOutput computes text-quality ratios for the produced Markdown.
func ScoreOutput(markdown string, pageCount int, hasImages bool) Quality {
	q := Quality{
		PageCount:       pageCount,
		PrintableRatio:  printableRatio(markdown),
		WordlikeRatio:   wordlikeRatio(markdown),
		HasImageStreams: hasImages,
	}
	if pageCount > 0 {
		q.CharsPerPage = float64(len([]rune(markdown))) / float64(pageCount)
	}
	return q
}

// printableRatio is the share of runes that are printable and non-control.
func printableRatio(text string) float64 {
	if text == "" {
		return 0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}

// wordlikeRatio is the share of whitespace-separated tokens that are mostly
// letters. Garbled OCR output scores low here.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		letters := 0
		for _, r := range f {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters*2 >= len([]rune(f)) {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
