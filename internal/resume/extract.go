// Package resume extracts structured fields from uploaded resume documents.
package resume

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ContactInfo holds contact fields pattern-matched over the whole
// document, independent of sections.
type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Parsed is the structured result of resume extraction. Missing sections
// are zero values, never an error.
type Parsed struct {
	FullText   string      `json:"fullText"`
	Skills     []string    `json:"skills"`
	Experience string      `json:"experience"`
	Education  string      `json:"education"`
	Contact    ContactInfo `json:"contactInfo"`
}

// MIME types accepted alongside plain text.
const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-\s]?\d{4}|\d{3}[-\s]?\d{3}[-\s]?\d{4}`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/[a-zA-Z0-9_-]+`)
	skillSep   = regexp.MustCompile(`[,|•\x{2022}]`)
)

// Section headers recognized case-insensitively at line starts. Text
// between a header and the next known header (or end of document) belongs
// to that section.
var sectionHeaders = []string{"SKILLS", "EXPERIENCE", "EDUCATION"}

// Extract decodes a resume document and parses its sections and contact
// fields. Dispatch is by declared content type with a sniff fallback.
// Only unreadable or corrupt input returns an error.
func Extract(data []byte, contentType string) (*Parsed, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("resume document is empty")
	}

	text, err := extractText(data, contentType)
	if err != nil {
		return nil, err
	}

	return ParseText(text), nil
}

func extractText(data []byte, contentType string) (string, error) {
	// Strip any parameters, e.g. "text/plain; charset=utf-8".
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(contentType)

	switch {
	case contentType == mimePDF || bytes.HasPrefix(data, []byte("%PDF-")):
		return extractPDFText(data)
	case contentType == mimeDOCX:
		return extractDocxText(data)
	default:
		if !isPlausibleText(data) {
			return "", fmt.Errorf("unsupported resume file type: %s", contentType)
		}
		return string(data), nil
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}

// isPlausibleText rejects binary payloads handed in without a usable
// content type.
func isPlausibleText(data []byte) bool {
	if bytes.ContainsRune(data, 0) {
		return false
	}
	return true
}

// ParseText parses already-decoded resume text into sections and contact
// fields. It never fails: unmatched sections come back empty.
func ParseText(text string) *Parsed {
	parsed := &Parsed{
		FullText: text,
		Skills:   []string{},
	}

	sections := splitSections(text)
	parsed.Skills = splitSkills(sections["SKILLS"])
	parsed.Experience = sections["EXPERIENCE"]
	parsed.Education = sections["EDUCATION"]

	parsed.Contact = extractContact(text)
	return parsed
}

// splitSections walks the document line by line, assigning text to the
// most recently seen known header.
func splitSections(text string) map[string]string {
	sections := make(map[string]string)
	builders := make(map[string]*strings.Builder)

	current := ""
	for _, line := range strings.Split(text, "\n") {
		if header := matchHeader(line); header != "" {
			current = header
			if builders[current] == nil {
				builders[current] = &strings.Builder{}
			}
			continue
		}
		if current == "" {
			continue
		}
		builders[current].WriteString(line)
		builders[current].WriteString("\n")
	}

	for name, b := range builders {
		sections[name] = strings.TrimSpace(b.String())
	}
	return sections
}

// matchHeader reports which known section header a line is, if any. A
// header line is the bare section name, case-insensitive, optionally
// followed by a colon.
func matchHeader(line string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(line))
	trimmed = strings.TrimSuffix(trimmed, ":")
	for _, header := range sectionHeaders {
		if trimmed == header {
			return header
		}
	}
	return ""
}

// splitSkills splits the skills section on comma, pipe, and bullet
// delimiters, trimming whitespace and dropping empties.
func splitSkills(section string) []string {
	if section == "" {
		return []string{}
	}

	parts := skillSep.Split(section, -1)
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		skill := strings.TrimSpace(part)
		if skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

func extractContact(text string) ContactInfo {
	contact := ContactInfo{}

	if m := emailRe.FindString(text); m != "" {
		contact.Email = m
	}
	if m := phoneRe.FindString(text); m != "" {
		contact.Phone = m
	}
	if m := linkedinRe.FindString(text); m != "" {
		contact.LinkedIn = m
	}

	// Name heuristic: first non-empty line of the document.
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			contact.Name = trimmed
			break
		}
	}

	return contact
}
