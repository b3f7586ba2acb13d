package openai

import (
	"encoding/base64"
	"strings"

	"github.com/tariffhub/tariff-ingest/internal/llm"
)

func buildSystemPrompt() string {
	parts := []string{
		"You are a customs tariff nomenclature parser. Return ONLY JSON that matches the JSON Schema provided.",
		"Extract every tariff line you can see: code, description label, unit of measure, ad-valorem duty rate, notes.",
		"Normalize code separators: '0101.21.00' and '0101 21 00' both mean code '01012100'. Keep the digits, drop dots, spaces and dashes.",
		"Tolerate partial or prefix codes: a 6- or 8-digit code is still a valid row, do not pad or invent missing digits.",
		"Preserve sub-category rows: an indented row under a heading is its own row, with its own code when present.",
		"Rates are percentages as decimal strings, e.g. '6.5'. Write 'rate': '0' for duty-free lines.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

const maxPromptText = 12000

func buildUserText(req llm.ExtractRequest) string {
	var b strings.Builder
	b.WriteString("Document: ")
	b.WriteString(req.DocumentHint)
	b.WriteString("\nSegment: ")
	b.WriteString(req.SourceRef)
	b.WriteString("\n\nTariff listing text:\n")
	if len(req.Text) > maxPromptText {
		b.WriteString(req.Text[:maxPromptText])
	} else {
		b.WriteString(req.Text)
	}
	return b.String()
}

func buildUserImageNote(req llm.ExtractRequest) string {
	var b strings.Builder
	b.WriteString("Document: ")
	b.WriteString(req.DocumentHint)
	b.WriteString("\nSegment: ")
	b.WriteString(req.SourceRef)
	b.WriteString("\n\nThe attached image is one scanned page of a tariff listing.")
	b.WriteString(" Also transcribe the page's visible text into 'page_text'.")
	return b.String()
}

func imageDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
