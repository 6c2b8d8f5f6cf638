package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `John Doe
Frontend Developer
john.doe@example.com | linkedin.com/in/johndoe | (555) 123-4567

SKILLS
JavaScript, TypeScript, React | Node.js • CSS

EXPERIENCE
Senior Frontend Developer | ABC Tech | 2020-Present
- Developed responsive web applications

EDUCATION
Bachelor of Science in Computer Science | University of Technology | 2014-2018
`

func TestParseText_Sections(t *testing.T) {
	parsed := ParseText(sampleResume)

	assert.Equal(t, []string{"JavaScript", "TypeScript", "React", "Node.js", "CSS"}, parsed.Skills)
	assert.Contains(t, parsed.Experience, "Senior Frontend Developer")
	assert.Contains(t, parsed.Experience, "ABC Tech")
	assert.Contains(t, parsed.Education, "Bachelor of Science")
	assert.Equal(t, sampleResume, parsed.FullText)
}

func TestParseText_Contact(t *testing.T) {
	parsed := ParseText(sampleResume)

	assert.Equal(t, "John Doe", parsed.Contact.Name)
	assert.Equal(t, "john.doe@example.com", parsed.Contact.Email)
	assert.Equal(t, "(555) 123-4567", parsed.Contact.Phone)
	assert.Equal(t, "linkedin.com/in/johndoe", parsed.Contact.LinkedIn)
}

func TestParseText_CaseInsensitiveHeadersWithColon(t *testing.T) {
	text := "Jane\n\nskills:\nGo, SQL\n\nExperience:\n5 years backend\n"
	parsed := ParseText(text)

	assert.Equal(t, []string{"Go", "SQL"}, parsed.Skills)
	assert.Equal(t, "5 years backend", parsed.Experience)
	assert.Empty(t, parsed.Education)
}

func TestParseText_MissingSectionsSoftFail(t *testing.T) {
	parsed := ParseText("Just a name\nand some prose with no headers at all")

	assert.Empty(t, parsed.Skills)
	assert.Empty(t, parsed.Experience)
	assert.Empty(t, parsed.Education)
	assert.Equal(t, "Just a name", parsed.Contact.Name)
}

func TestParseText_SectionEndsAtNextHeader(t *testing.T) {
	text := "SKILLS\nGo\nEDUCATION\nBS CS\n"
	parsed := ParseText(text)

	assert.Equal(t, []string{"Go"}, parsed.Skills)
	assert.Equal(t, "BS CS", parsed.Education)
	assert.NotContains(t, parsed.Education, "Go")
}

func TestParseText_InlineHeaderWordIsNotAHeader(t *testing.T) {
	// "experience" appearing mid-sentence must not open a section.
	text := "SKILLS\nGo\nHas experience with databases\n"
	parsed := ParseText(text)

	require.Len(t, parsed.Skills, 1)
	assert.Contains(t, parsed.Skills[0], "experience with databases")
	assert.Empty(t, parsed.Experience)
}

func TestExtract_PlainText(t *testing.T) {
	parsed, err := Extract([]byte(sampleResume), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", parsed.Contact.Name)
	assert.NotEmpty(t, parsed.Skills)
}

func TestExtract_EmptyInput(t *testing.T) {
	_, err := Extract(nil, "text/plain")
	assert.Error(t, err)
}

func TestExtract_BinaryGarbage(t *testing.T) {
	_, err := Extract([]byte{0x00, 0x01, 0x02, 0xff}, "application/octet-stream")
	assert.Error(t, err)
}

func TestExtract_CorruptPDF(t *testing.T) {
	_, err := Extract([]byte("%PDF-1.4 this is not a real pdf"), mimePDF)
	assert.Error(t, err)
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{}, splitSkills(""))
	assert.Equal(t, []string{"a", "b", "c", "d"}, splitSkills("a, b | c • d"))
	assert.Equal(t, []string{"solo"}, splitSkills("  solo  "))
}
