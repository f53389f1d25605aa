package guide

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	maxPlaces  = 10
	maxDays    = 30
	dateLayout = "2006-01-02"
)

// ErrNoDestination is returned when neither the request nor the prompt
// names a destination.
var ErrNoDestination = errors.New("could not determine a destination from the request")

var (
	destinationRe = regexp.MustCompile(`\b(?:[Ii]n|[Tt]o)\s+([A-Z][\p{L}'-]*(?:\s+[A-Z][\p{L}'-]*)*)`)
	visitRe       = regexp.MustCompile(`\b(?:[Vv]isit(?:ing)?|[Ss]ee(?:ing)?|[Ee]xplor(?:e|ing))\s+([A-Z][\p{L}'-]*(?:\s+[A-Z][\p{L}'-]*)*)`)
	placesRe      = regexp.MustCompile(`(?i)\b(?:visit|see)\s+([^.;!?\n]+)`)
	placesStopRe  = regexp.MustCompile(`(?i)\s+(?:in|for|during|on|starting|from|next|this|over|with|while|before|after)\s`)
	placesSplitRe = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+|\s*&\s*`)
	durationRe    = regexp.MustCompile(`(?i)\b(\d{1,2}|a|one|two|three|four|five|six|seven|eight|nine|ten)[\s-]*(day|week)s?\b`)
	weekendRe     = regexp.MustCompile(`(?i)\bweekend\b`)
	dateRe        = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	tokenRe       = regexp.MustCompile(`[\p{L}'-]+|\d+|[^\s\p{L}\d]`)
)

var numberWords = map[string]int{
	"a": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Words the destination pattern picks up that are not places.
var calendarWords = map[string]bool{
	"january": true, "february": true, "march": true, "april": true, "may": true, "june": true,
	"july": true, "august": true, "september": true, "october": true, "november": true, "december": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
	"saturday": true, "sunday": true, "spring": true, "summer": true, "autumn": true, "winter": true,
}

// Leading words stripped from a point of interest.
var placePrefixes = map[string]bool{
	"the": true, "a": true, "an": true,
	"visit": true, "visiting": true, "see": true, "seeing": true, "explore": true, "exploring": true,
}

// Words introducing a destination in a lowercase prompt.
var destinationMarkers = map[string]bool{"in": true, "to": true, "visit": true, "visiting": true}

// Words that end a lowercase destination.
var destinationStops = map[string]bool{
	"in": true, "to": true, "for": true, "during": true, "on": true, "starting": true, "from": true,
	"next": true, "this": true, "over": true, "with": true, "while": true, "before": true,
	"after": true, "and": true, "or": true, "at": true, "i": true, "we": true,
}

// Words that cannot start a lowercase destination: verbs and fillers that
// follow "to" or "in".
var notDestinations = map[string]bool{
	"go": true, "see": true, "visit": true, "explore": true, "plan": true, "travel": true, "spend": true,
	"stay": true, "get": true, "be": true, "have": true, "make": true, "do": true, "take": true,
	"fly": true, "drive": true, "come": true, "know": true, "try": true, "eat": true, "find": true,
	"my": true, "our": true, "your": true, "me": true, "us": true, "it": true, "there": true,
	"here": true, "town": true, "mind": true, "total": true, "advance": true, "between": true,
	"day": true, "days": true, "week": true, "weeks": true, "few": true, "couple": true,
}

// Analyze extracts the destination, points of interest and stay dates.
// Explicit request fields win over what the prompt says.
func Analyze(req Request) (Analysis, error) {
	prompt := strings.TrimSpace(req.Prompt)

	a := Analysis{Destination: strings.TrimSpace(req.Destination)}
	if a.Destination == "" {
		a.Destination = destinationFrom(prompt)
	}
	if a.Destination == "" {
		return Analysis{}, ErrNoDestination
	}

	a.Places = placesFrom(prompt, a.Destination)

	a.Days = req.Days
	if a.Days <= 0 {
		a.Days = durationFrom(prompt)
	}
	a.Days = min(a.Days, maxDays)

	switch {
	case req.StartDate != "":
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return Analysis{}, fmt.Errorf("invalid start date %q: %w", req.StartDate, err)
		}
		a.StartDate = start
	default:
		if m := dateRe.FindStringSubmatch(prompt); m != nil {
			if start, err := time.Parse(dateLayout, m[1]); err == nil {
				a.StartDate = start
			}
		}
	}
	return a, nil
}

func destinationFrom(prompt string) string {
	if d := firstPlaceMatch(destinationRe, prompt); d != "" {
		return d
	}
	if d := firstPlaceMatch(visitRe, prompt); d != "" {
		return d
	}
	return lowercaseDestination(prompt)
}

// lowercaseDestination finds "in new york" style phrases in prompts
// written without capitals. It takes up to three words after a marker,
// stopping at a stop word, number or punctuation, and title-cases them.
func lowercaseDestination(prompt string) string {
	tokens := tokenRe.FindAllString(strings.ToLower(prompt), -1)
	for i, tok := range tokens {
		if !destinationMarkers[tok] {
			continue
		}
		j := i + 1
		for j < len(tokens) && (tokens[j] == "the" || tokens[j] == "a" || tokens[j] == "an") {
			j++
		}
		var words []string
		for ; j < len(tokens) && len(words) < 3; j++ {
			w := tokens[j]
			if destinationStops[w] || !isWord(w) {
				break
			}
			words = append(words, w)
		}
		if len(words) == 0 || notDestinations[words[0]] || calendarWords[words[0]] || numberWords[words[0]] > 0 {
			continue
		}
		for k, w := range words {
			words[k] = titleCase(w)
		}
		return strings.Join(words, " ")
	}
	return ""
}

func isWord(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsLetter(r)
}

func titleCase(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + w[size:]
}

func firstPlaceMatch(re *regexp.Regexp, prompt string) string {
	for _, m := range re.FindAllStringSubmatch(prompt, -1) {
		words := strings.Fields(m[1])
		for len(words) > 0 && (words[len(words)-1] == "I" || words[len(words)-1] == "We") {
			words = words[:len(words)-1]
		}
		if len(words) == 0 || calendarWords[strings.ToLower(words[0])] {
			continue
		}
		return strings.Join(words, " ")
	}
	return ""
}

func placesFrom(prompt, destination string) []string {
	var places []string
	seen := map[string]bool{strings.ToLower(destination): true}
	for _, m := range placesRe.FindAllStringSubmatch(prompt, -1) {
		segment := m[1]
		if loc := placesStopRe.FindStringIndex(segment); loc != nil {
			segment = segment[:loc[0]]
		}
		for _, part := range placesSplitRe.Split(segment, -1) {
			name := cleanPlace(part)
			key := strings.ToLower(name)
			if name == "" || seen[key] {
				continue
			}
			seen[key] = true
			places = append(places, name)
			if len(places) == maxPlaces {
				return places
			}
		}
	}
	return places
}

// cleanPlace strips quotes and any leading articles or visit verbs, so
// "see the Colosseum" becomes "Colosseum".
func cleanPlace(s string) string {
	words := strings.Fields(strings.Trim(strings.TrimSpace(s), `"'`))
	for len(words) > 1 && placePrefixes[strings.ToLower(words[0])] {
		words = words[1:]
	}
	if len(words) == 1 && placePrefixes[strings.ToLower(words[0])] {
		return ""
	}
	return strings.Trim(strings.Join(words, " "), `"'`)
}

func durationFrom(prompt string) int {
	if m := durationRe.FindStringSubmatch(prompt); m != nil {
		n, ok := numberWords[strings.ToLower(m[1])]
		if !ok {
			n, _ = strconv.Atoi(m[1])
		}
		if strings.EqualFold(m[2], "week") {
			n *= 7
		}
		if n > 0 {
			return n
		}
	}
	if weekendRe.MatchString(prompt) {
		return 2
	}
	return 0
}
