package summarizer

import (
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// WriteDocx renders the summary document to a styled .docx file with the
// same section order as Markdown().
func WriteDocx(d *Document, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addHeading(doc, "Meeting Summary", 16)
	addBody(doc, fmt.Sprintf("Generated: %s", d.GeneratedAt.Format("2006-01-02 15:04")))
	addBody(doc, fmt.Sprintf("Transcript Length: %s characters | %s words",
		groupDigits(d.TranscriptChars), groupDigits(d.TranscriptWords)))
	doc.AddParagraph("")

	addHeading(doc, "Executive Summary", 15)
	addBody(doc, d.Executive)
	doc.AddParagraph("")

	addHeading(doc, "Detailed Summary", 15)
	addBody(doc, d.Detailed)
	doc.AddParagraph("")

	addHeading(doc, "Key Points", 15)
	for _, p := range d.KeyPoints {
		addBody(doc, "• "+p)
	}
	doc.AddParagraph("")

	addHeading(doc, "Action Items & Takeaways", 15)
	for _, item := range d.ActionItems {
		addBody(doc, "☐ "+item)
	}
	doc.AddParagraph("")

	addHeading(doc, "Full Transcript", 15)
	addBody(doc, d.Transcript)

	return doc.SaveTo(outputPath)
}

func addHeading(doc *docx.RootDoc, text string, size uint64) {
	p := doc.AddParagraph("")
	p.AddText(text).Font(fontName).Size(size).Color("000000").Bold(true)
}

func addBody(doc *docx.RootDoc, text string) {
	p := doc.AddParagraph("")
	p.AddText(text).Font(fontName).Size(fontSize).Color("000000")
}
