package alchemy

import "sort"

// Flavor is the kind of input a call carries. It selects both the endpoint
// and the parameter name the payload is sent under.
type Flavor string

const (
	FlavorText  Flavor = "text"
	FlavorURL   Flavor = "url"
	FlavorHTML  Flavor = "html"
	FlavorImage Flavor = "image"
)

// Capability names an analysis operation exposed by the service.
type Capability string

const (
	CapabilitySentiment         Capability = "sentiment"
	CapabilitySentimentTargeted Capability = "sentiment_targeted"
	CapabilityAuthor            Capability = "author"
	CapabilityAuthors           Capability = "authors"
	CapabilityKeywords          Capability = "keywords"
	CapabilityConcepts          Capability = "concepts"
	CapabilityEntities          Capability = "entities"
	CapabilityCategory          Capability = "category"
	CapabilityRelations         Capability = "relations"
	CapabilityLanguage          Capability = "language"
	CapabilityText              Capability = "text"
	CapabilityTextRaw           Capability = "text_raw"
	CapabilityTitle             Capability = "title"
	CapabilityFeeds             Capability = "feeds"
	CapabilityMicroformats      Capability = "microformats"
	CapabilityTaxonomy          Capability = "taxonomy"
	CapabilityCombined          Capability = "combined"
	CapabilityImage             Capability = "image"
	CapabilityImageKeywords     Capability = "image_keywords"
	CapabilityPubDate           Capability = "pub_date"
)

// endpoints maps each capability to the service path for every flavor it
// accepts. The paths are the service's own and must not be altered; note
// that pub_date/html really lives under /image.
var endpoints = map[Capability]map[Flavor]string{
	CapabilitySentiment: {
		FlavorURL:  "/url/URLGetTextSentiment",
		FlavorText: "/text/TextGetTextSentiment",
		FlavorHTML: "/html/HTMLGetTextSentiment",
	},
	CapabilitySentimentTargeted: {
		FlavorURL:  "/url/URLGetTargetedSentiment",
		FlavorText: "/text/TextGetTargetedSentiment",
		FlavorHTML: "/html/HTMLGetTargetedSentiment",
	},
	CapabilityAuthor: {
		FlavorURL:  "/url/URLGetAuthor",
		FlavorHTML: "/html/HTMLGetAuthor",
	},
	CapabilityAuthors: {
		FlavorURL:  "/url/URLGetAuthors",
		FlavorHTML: "/html/HTMLGetAuthors",
	},
	CapabilityKeywords: {
		FlavorURL:  "/url/URLGetRankedKeywords",
		FlavorText: "/text/TextGetRankedKeywords",
		FlavorHTML: "/html/HTMLGetRankedKeywords",
	},
	CapabilityConcepts: {
		FlavorURL:  "/url/URLGetRankedConcepts",
		FlavorText: "/text/TextGetRankedConcepts",
		FlavorHTML: "/html/HTMLGetRankedConcepts",
	},
	CapabilityEntities: {
		FlavorURL:  "/url/URLGetRankedNamedEntities",
		FlavorText: "/text/TextGetRankedNamedEntities",
		FlavorHTML: "/html/HTMLGetRankedNamedEntities",
	},
	CapabilityCategory: {
		FlavorURL:  "/url/URLGetCategory",
		FlavorText: "/text/TextGetCategory",
		FlavorHTML: "/html/HTMLGetCategory",
	},
	CapabilityRelations: {
		FlavorURL:  "/url/URLGetRelations",
		FlavorText: "/text/TextGetRelations",
		FlavorHTML: "/html/HTMLGetRelations",
	},
	CapabilityLanguage: {
		FlavorURL:  "/url/URLGetLanguage",
		FlavorText: "/text/TextGetLanguage",
		FlavorHTML: "/html/HTMLGetLanguage",
	},
	CapabilityText: {
		FlavorURL:  "/url/URLGetText",
		FlavorHTML: "/html/HTMLGetText",
	},
	CapabilityTextRaw: {
		FlavorURL:  "/url/URLGetRawText",
		FlavorHTML: "/html/HTMLGetRawText",
	},
	CapabilityTitle: {
		FlavorURL:  "/url/URLGetTitle",
		FlavorHTML: "/html/HTMLGetTitle",
	},
	CapabilityFeeds: {
		FlavorURL:  "/url/URLGetFeedLinks",
		FlavorHTML: "/html/HTMLGetFeedLinks",
	},
	CapabilityMicroformats: {
		FlavorURL:  "/url/URLGetMicroformatData",
		FlavorHTML: "/html/HTMLGetMicroformatData",
	},
	CapabilityTaxonomy: {
		FlavorURL:  "/url/URLGetRankedTaxonomy",
		FlavorText: "/text/TextGetRankedTaxonomy",
		FlavorHTML: "/html/HTMLGetRankedTaxonomy",
	},
	CapabilityCombined: {
		FlavorURL: "/url/URLGetCombinedData",
	},
	CapabilityImage: {
		FlavorURL: "/url/URLGetImage",
	},
	CapabilityImageKeywords: {
		FlavorURL:   "/url/URLGetRankedImageKeywords",
		FlavorImage: "/image/ImageGetRankedImageKeywords",
	},
	CapabilityPubDate: {
		FlavorURL:  "/url/URLGetPubDate",
		FlavorHTML: "/image/HTMLGetPubDate",
	},
}

// features holds the human-readable operation names used in error messages.
var features = map[Capability]string{
	CapabilitySentiment:         "Sentiment analysis",
	CapabilitySentimentTargeted: "Sentiment analysis",
	CapabilityAuthor:            "Author extraction",
	CapabilityAuthors:           "Authors extraction",
	CapabilityKeywords:          "Keyword extraction",
	CapabilityConcepts:          "Concept tagging",
	CapabilityEntities:          "Entity extraction",
	CapabilityCategory:          "Text categorization",
	CapabilityRelations:         "Relation extraction",
	CapabilityLanguage:          "Language detection",
	CapabilityText:              "Text extraction",
	CapabilityTextRaw:           "Text extraction",
	CapabilityTitle:             "Title extraction",
	CapabilityFeeds:             "Feed detection",
	CapabilityMicroformats:      "Microformats parsing",
	CapabilityTaxonomy:          "Taxonomy categorization",
	CapabilityCombined:          "Combined data extraction",
	CapabilityImage:             "Image extraction",
	CapabilityImageKeywords:     "Image tagging",
	CapabilityPubDate:           "Publication date extraction",
}

// Feature returns the human-readable name of the capability.
func (c Capability) Feature() string {
	if f, ok := features[c]; ok {
		return f
	}
	return string(c)
}

// EndpointPath returns the service path for the capability and flavor, and
// whether that combination exists.
func EndpointPath(c Capability, f Flavor) (string, bool) {
	path, ok := endpoints[c][f]
	return path, ok
}

// Supports reports whether the capability accepts the flavor.
func (c Capability) Supports(f Flavor) bool {
	_, ok := EndpointPath(c, f)
	return ok
}

// Flavors returns the flavors accepted by the capability, sorted by name.
func Flavors(c Capability) []Flavor {
	var out []Flavor
	for f := range endpoints[c] {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Capabilities returns every known capability, sorted by name.
func Capabilities() []Capability {
	out := make([]Capability, 0, len(endpoints))
	for c := range endpoints {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCapability converts a capability name into a Capability.
func ParseCapability(s string) (Capability, bool) {
	c := Capability(s)
	_, ok := endpoints[c]
	return c, ok
}

// ParseFlavor converts a flavor name into a Flavor.
func ParseFlavor(s string) (Flavor, bool) {
	switch f := Flavor(s); f {
	case FlavorText, FlavorURL, FlavorHTML, FlavorImage:
		return f, true
	}
	return "", false
}
