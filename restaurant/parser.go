package restaurant

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinInputLength is the shortest trimmed input the parser accepts.
const MinInputLength = 2

var (
	// ErrInputRequired is returned when the parse input is empty.
	ErrInputRequired = errors.New("input is required")
	// ErrInputTooShort is returned when the trimmed input is shorter than MinInputLength.
	ErrInputTooShort = errors.New("input too short")
)

var socialPatterns = []struct {
	platform string
	re       *regexp.Regexp
}{
	{"instagram", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/([^/?#\s]+)`)},
	{"tiktok", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?tiktok\.com/@?([^/?#\s]+)`)},
	{"facebook", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/([^/?#\s]+)`)},
}

// DefaultCities are recognised as a trailing location in free-text input.
var DefaultCities = []string{
	"Tel Aviv",
	"Tel Aviv-Yafo",
	"Jerusalem",
	"Haifa",
	"Jaffa",
	"Eilat",
	"Herzliya",
	"Ramat Gan",
	"Netanya",
	"Beer Sheva",
}

// SocialLink describes a recognised social profile URL.
type SocialLink struct {
	Platform string
	Handle   string
	URL      string
}

// DetectSocialLink reports whether input contains an Instagram, TikTok or
// Facebook profile URL.
func DetectSocialLink(input string) (SocialLink, bool) {
	for _, p := range socialPatterns {
		loc := p.re.FindStringSubmatchIndex(input)
		if loc == nil {
			continue
		}
		return SocialLink{
			Platform: p.platform,
			Handle:   input[loc[2]:loc[3]],
			URL:      input[loc[0]:loc[1]],
		}, true
	}
	return SocialLink{}, false
}

// Parser extracts a restaurant candidate from free text without any external
// lookups.
type Parser struct {
	cities []string
}

// NewParser returns a Parser that recognises the given cities, falling back
// to DefaultCities when none are supplied.
func NewParser(cities ...string) *Parser {
	if len(cities) == 0 {
		cities = DefaultCities
	}
	sorted := make([]string, len(cities))
	copy(sorted, cities)
	// longest first so "Tel Aviv-Yafo" wins over "Tel Aviv"
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && len(sorted[j]) > len(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return &Parser{cities: sorted}
}

// Parse turns the raw input into a Candidate.
func (p *Parser) Parse(input string) (Candidate, error) {
	if input == "" {
		return Candidate{}, ErrInputRequired
	}
	trimmed := strings.TrimSpace(input)
	if utf8.RuneCountInString(trimmed) < MinInputLength {
		return Candidate{}, ErrInputTooShort
	}

	if link, ok := DetectSocialLink(trimmed); ok {
		return Candidate{
			Name:       NameFromHandle(link.Handle),
			SocialLink: StringPtr(link.URL),
		}, nil
	}

	if name, city, ok := p.splitCity(trimmed); ok {
		return Candidate{Name: name, City: StringPtr(city)}, nil
	}
	return Candidate{Name: trimmed}, nil
}

func (p *Parser) splitCity(input string) (string, string, bool) {
	lower := strings.ToLower(input)
	for _, city := range p.cities {
		suffix := " " + strings.ToLower(city)
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		name := strings.TrimSpace(input[:len(input)-len(suffix)])
		name = strings.TrimRight(name, ",- ")
		if name == "" {
			return "", "", false
		}
		return name, city, true
	}
	return "", "", false
}

// NameFromHandle turns a social handle such as "vitrina_tlv" into a display
// name ("Vitrina TLV"). Short alphabetic tokens are treated as acronyms.
func NameFromHandle(handle string) string {
	fields := strings.FieldsFunc(handle, func(r rune) bool {
		return r == '_' || r == '.' || r == '-' || r == '@'
	})
	for i, f := range fields {
		if utf8.RuneCountInString(f) <= 3 && isLetters(f) {
			fields[i] = strings.ToUpper(f)
			continue
		}
		r, size := utf8.DecodeRuneInString(f)
		fields[i] = string(unicode.ToUpper(r)) + f[size:]
	}
	return strings.Join(fields, " ")
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
