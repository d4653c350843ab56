package alchemy

import (
	"net/url"
	"strconv"
	"strings"
)

// Options holds the optional service parameters for a call. Zero values are
// not sent. Which parameters a capability honors is decided by the service;
// this package forwards whatever is set.
type Options struct {
	// ShowSourceText includes the analyzed text in the response.
	ShowSourceText *bool

	// MaxRetrieve caps the number of returned items (entities, keywords,
	// concepts, relations).
	MaxRetrieve int

	// Disambiguate entities (Apple the company vs. apple the fruit).
	Disambiguate *bool

	// LinkedData includes linked data on disambiguated entities.
	LinkedData *bool

	// Coreference resolves pronouns to the entities they refer to.
	Coreference *bool

	// Quotations extracts quotations by entities.
	Quotations *bool

	// Sentiment adds per-item sentiment. Costs one extra transaction.
	Sentiment *bool

	// KeywordExtractMode is "normal" or "strict".
	KeywordExtractMode string

	// SourceText selects where the service obtains the text to analyze.
	SourceText string

	// UseMetadata uses meta description data for text and title extraction.
	UseMetadata *bool

	// ExtractLinks includes links in extracted text.
	ExtractLinks *bool

	// RequireEntities only returns relations that contain entities.
	RequireEntities *bool

	// SentimentExcludeEntities excludes entity names from relation sentiment.
	SentimentExcludeEntities *bool

	// Keywords extracts keywords from relation subjects and objects.
	Keywords *bool

	// Entities extracts entities from relation subjects and objects.
	Entities *bool

	// Extract lists what a combined call returns, e.g. "entity", "keyword",
	// "page-image".
	Extract []string

	// ExtractMode is "trust-metadata" or "always-infer" for image calls.
	ExtractMode string

	// Extra carries parameters without a named field. Named fields and
	// parameters injected by the client take precedence.
	Extra map[string]string
}

// Bool returns a pointer to b, for use with the flag fields of Options.
func Bool(b bool) *bool {
	return &b
}

// values encodes the options as request parameters.
func (o *Options) values() url.Values {
	v := url.Values{}
	if o == nil {
		return v
	}

	for key, val := range o.Extra {
		v.Set(key, val)
	}

	setFlag(v, "showSourceText", o.ShowSourceText)
	setFlag(v, "disambiguate", o.Disambiguate)
	setFlag(v, "linkedData", o.LinkedData)
	setFlag(v, "coreference", o.Coreference)
	setFlag(v, "quotations", o.Quotations)
	setFlag(v, "sentiment", o.Sentiment)
	setFlag(v, "useMetadata", o.UseMetadata)
	setFlag(v, "extractLinks", o.ExtractLinks)
	setFlag(v, "requireEntities", o.RequireEntities)
	setFlag(v, "sentimentExcludeEntities", o.SentimentExcludeEntities)
	setFlag(v, "keywords", o.Keywords)
	setFlag(v, "entities", o.Entities)

	if o.MaxRetrieve > 0 {
		v.Set("maxRetrieve", strconv.Itoa(o.MaxRetrieve))
	}
	if o.KeywordExtractMode != "" {
		v.Set("keywordExtractMode", o.KeywordExtractMode)
	}
	if o.SourceText != "" {
		v.Set("sourceText", o.SourceText)
	}
	if len(o.Extract) > 0 {
		v.Set("extract", strings.Join(o.Extract, ","))
	}
	if o.ExtractMode != "" {
		v.Set("extractMode", o.ExtractMode)
	}

	return v
}

func setFlag(v url.Values, key string, b *bool) {
	if b == nil {
		return
	}
	if *b {
		v.Set(key, "1")
	} else {
		v.Set(key, "0")
	}
}
