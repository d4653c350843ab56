package alchemytest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rhuss/alchemy/pkg/alchemy"
)

// Status info values returned by the fake, taken from the service's own
// vocabulary.
const (
	InfoInvalidKey        = "invalid-api-key"
	InfoUnsupportedOutput = "unsupported-output-mode"
	InfoContentEmpty      = "content-is-empty"
	InfoTargetNotFound    = "cannot-locate-keyphrase"
)

const usage = "By accessing this service or using information generated by it, you agree to be bound by its terms of use."

var (
	positiveWords = wordSet("love", "like", "great", "good", "excellent", "happy", "wonderful", "best", "amazing", "nice")
	negativeWords = wordSet("hate", "bad", "terrible", "awful", "worst", "sad", "poor", "horrible", "broken", "ugly")
	stopWords     = wordSet("a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from", "has", "have",
		"in", "is", "it", "its", "of", "on", "or", "that", "the", "this", "to", "was", "were", "will", "with")

	tagPattern  = regexp.MustCompile(`<[^>]*>`)
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}']+`)
	titleTag    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	feedLink    = regexp.MustCompile(`(?is)<link[^>]+type="application/(?:rss|atom)\+xml"[^>]*href="([^"]+)"`)
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// ErrorDocument returns the service's error shape.
func ErrorDocument(info string) map[string]any {
	return map[string]any{
		"status":     alchemy.StatusError,
		"statusInfo": info,
		"usage":      usage,
	}
}

// answer builds the reply for a recorded call.
func (s *Service) answer(c Call) map[string]any {
	key := c.Params.Get("apikey")
	if (s.apiKey != "" && key != s.apiKey) || utf8.RuneCountInString(key) != alchemy.KeyLength {
		return ErrorDocument(InfoInvalidKey)
	}
	if c.Params.Get("outputMode") != "json" {
		return ErrorDocument(InfoUnsupportedOutput)
	}

	var payload string
	if c.Flavor == alchemy.FlavorImage {
		payload = string(c.Body)
	} else {
		payload = c.Params.Get(string(c.Flavor))
	}
	if payload == "" {
		return ErrorDocument(InfoContentEmpty)
	}

	// URLs are not fetched; the URL itself stands in for the page text.
	text := payload
	if c.Flavor == alchemy.FlavorHTML {
		text = strings.TrimSpace(tagPattern.ReplaceAllString(payload, " "))
	}

	doc := map[string]any{
		"status":   "OK",
		"usage":    usage,
		"language": "english",
	}
	if c.Flavor == alchemy.FlavorURL {
		doc["url"] = payload
	} else {
		doc["url"] = ""
	}
	if c.Params.Get("showSourceText") == "1" {
		doc["text"] = text
	}
	maxRetrieve, _ := strconv.Atoi(c.Params.Get("maxRetrieve"))

	switch c.Capability {
	case alchemy.CapabilitySentiment:
		doc["docSentiment"] = sentiment(text)
	case alchemy.CapabilitySentimentTargeted:
		target := c.Params.Get("target")
		sentence := sentenceContaining(text, target)
		if target == "" || sentence == "" {
			return ErrorDocument(InfoTargetNotFound)
		}
		doc["docSentiment"] = sentiment(sentence)
	case alchemy.CapabilityKeywords:
		doc["keywords"] = keywords(text, maxRetrieve)
	case alchemy.CapabilityConcepts:
		doc["concepts"] = concepts(text, maxRetrieve)
	case alchemy.CapabilityEntities:
		doc["entities"] = entities(text, maxRetrieve)
	case alchemy.CapabilityRelations:
		doc["relations"] = relations(text, maxRetrieve)
	case alchemy.CapabilityCategory:
		doc["category"] = "unknown"
		doc["score"] = "0"
	case alchemy.CapabilityTaxonomy:
		doc["taxonomy"] = []any{map[string]any{"label": "/unknown", "score": "0"}}
	case alchemy.CapabilityLanguage:
		doc["iso-639-1"] = "en"
		doc["iso-639-2"] = "eng"
		doc["iso-639-3"] = "eng"
	case alchemy.CapabilityText, alchemy.CapabilityTextRaw:
		doc["text"] = text
	case alchemy.CapabilityTitle:
		doc["title"] = title(payload)
	case alchemy.CapabilityAuthor:
		doc["author"] = ""
	case alchemy.CapabilityAuthors:
		doc["authors"] = map[string]any{"confident": "no", "names": []any{}}
	case alchemy.CapabilityFeeds:
		doc["feeds"] = feeds(payload)
	case alchemy.CapabilityMicroformats:
		doc["microformats"] = []any{}
	case alchemy.CapabilityPubDate:
		doc["publicationDate"] = map[string]any{"date": "", "confident": "no"}
	case alchemy.CapabilityImage:
		doc["image"] = ""
	case alchemy.CapabilityImageKeywords:
		doc["imageKeywords"] = []any{map[string]any{"text": "NO_TAGS", "score": "0"}}
	case alchemy.CapabilityCombined:
		for _, part := range strings.Split(c.Params.Get("extract"), ",") {
			switch strings.TrimSpace(part) {
			case "entity":
				doc["entities"] = entities(text, maxRetrieve)
			case "keyword":
				doc["keywords"] = keywords(text, maxRetrieve)
			case "concept":
				doc["concepts"] = concepts(text, maxRetrieve)
			case "title":
				doc["title"] = ""
			case "doc-sentiment":
				doc["docSentiment"] = sentiment(text)
			}
		}
	}
	return doc
}

// sentiment scores text against a tiny lexicon.
func sentiment(text string) map[string]any {
	var pos, neg int
	for _, w := range words(text) {
		switch {
		case positiveWords[w]:
			pos++
		case negativeWords[w]:
			neg++
		}
	}
	if pos == neg {
		return map[string]any{"type": "neutral"}
	}
	score := float64(pos-neg) / float64(pos+neg)
	kind := "positive"
	if score < 0 {
		kind = "negative"
	}
	return map[string]any{"type": kind, "score": strconv.FormatFloat(score, 'f', 6, 64)}
}

func sentenceContaining(text, target string) string {
	if target == "" {
		return ""
	}
	for _, s := range strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' || r == '?' }) {
		if strings.Contains(strings.ToLower(s), strings.ToLower(target)) {
			return s
		}
	}
	return ""
}

func words(text string) []string {
	raw := wordPattern.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		out = append(out, strings.ToLower(w))
	}
	return out
}

type ranked struct {
	text  string
	count int
}

// rank orders terms by frequency, then alphabetically, and caps the list.
func rank(counts map[string]int, limit int) []ranked {
	out := make([]ranked, 0, len(counts))
	for t, n := range counts {
		out = append(out, ranked{t, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].text < out[j].text
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func relevance(r ranked, top int) string {
	return strconv.FormatFloat(float64(r.count)/float64(top), 'f', 6, 64)
}

func keywords(text string, limit int) []any {
	counts := make(map[string]int)
	for _, w := range words(text) {
		if len(w) >= 3 && !stopWords[w] {
			counts[w]++
		}
	}
	terms := rank(counts, limit)
	out := make([]any, 0, len(terms))
	for _, t := range terms {
		out = append(out, map[string]any{"text": t.text, "relevance": relevance(t, terms[0].count)})
	}
	return out
}

func concepts(text string, limit int) []any {
	kws := keywords(text, limit)
	out := make([]any, 0, len(kws))
	for _, k := range kws {
		m := k.(map[string]any)
		out = append(out, map[string]any{"text": capitalize(m["text"].(string)), "relevance": m["relevance"]})
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// entities treats runs of capitalized words as named entities.
func entities(text string, limit int) []any {
	counts := make(map[string]int)
	var run []string
	flush := func() {
		if len(run) > 0 {
			counts[strings.Join(run, " ")]++
			run = run[:0]
		}
	}
	for _, w := range wordPattern.FindAllString(text, -1) {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(r) && !stopWords[strings.ToLower(w)] {
			run = append(run, w)
			continue
		}
		flush()
	}
	flush()

	terms := rank(counts, limit)
	out := make([]any, 0, len(terms))
	for _, t := range terms {
		out = append(out, map[string]any{
			"type":      "Unknown",
			"text":      t.text,
			"count":     strconv.Itoa(t.count),
			"relevance": relevance(t, terms[0].count),
		})
	}
	return out
}

// relations splits each sentence around its first verb-like token.
func relations(text string, limit int) []any {
	var out []any
	for _, s := range strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' || r == '?' }) {
		ws := wordPattern.FindAllString(s, -1)
		if len(ws) < 3 {
			continue
		}
		out = append(out, map[string]any{
			"subject": map[string]any{"text": ws[0]},
			"action":  map[string]any{"text": ws[1]},
			"object":  map[string]any{"text": strings.Join(ws[2:], " ")},
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}

func title(html string) string {
	if m := titleTag.FindStringSubmatch(html); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func feeds(html string) []any {
	out := []any{}
	for _, m := range feedLink.FindAllStringSubmatch(html, -1) {
		out = append(out, map[string]any{"feed": m[1]})
	}
	return out
}

// String renders a call for test failure messages.
func (c Call) String() string {
	return fmt.Sprintf("%s/%s %s", c.Capability, c.Flavor, c.Path)
}
