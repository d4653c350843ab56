package alchemy

import "context"

// Sentiment calculates the document sentiment for text, a URL or HTML.
//
// Honored options: ShowSourceText.
func (c *Client) Sentiment(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilitySentiment, Flavor: flavor, Data: data, Options: opts})
}

// SentimentTargeted calculates the sentiment toward target within text, a
// URL or HTML. An empty target fails with ErrMissingTarget.
//
// Honored options: ShowSourceText.
func (c *Client) SentimentTargeted(ctx context.Context, flavor Flavor, data, target string, opts *Options) Result {
	return c.Call(ctx, Request{
		Capability: CapabilitySentimentTargeted,
		Flavor:     flavor,
		Data:       data,
		Target:     target,
		Options:    opts,
	})
}

// Entities extracts named entities from text, a URL or HTML.
//
// Honored options: Disambiguate, LinkedData, Coreference, Quotations,
// Sentiment, ShowSourceText, MaxRetrieve (default 50).
func (c *Client) Entities(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityEntities, Flavor: flavor, Data: data, Options: opts})
}

// Keywords extracts ranked keywords from text, a URL or HTML.
//
// Honored options: MaxRetrieve (default 50), KeywordExtractMode, Sentiment,
// ShowSourceText, SourceText.
func (c *Client) Keywords(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityKeywords, Flavor: flavor, Data: data, Options: opts})
}

// Concepts tags the concepts of text, a URL or HTML.
//
// Honored options: MaxRetrieve (default 8), LinkedData, ShowSourceText.
func (c *Client) Concepts(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityConcepts, Flavor: flavor, Data: data, Options: opts})
}

// Relations extracts subject-action-object relations from text, a URL or HTML.
//
// Honored options: Sentiment, Keywords, Entities, RequireEntities,
// SentimentExcludeEntities, Disambiguate, LinkedData, Coreference,
// ShowSourceText, MaxRetrieve (default 50, max 100).
func (c *Client) Relations(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityRelations, Flavor: flavor, Data: data, Options: opts})
}

// Category categorizes text, a URL or HTML.
func (c *Client) Category(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityCategory, Flavor: flavor, Data: data, Options: opts})
}

// Language detects the language of text, a URL or HTML.
func (c *Client) Language(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityLanguage, Flavor: flavor, Data: data, Options: opts})
}

// Text extracts the cleaned page text (no ads or navigation) of a URL or HTML.
//
// Honored options: UseMetadata, ExtractLinks.
func (c *Client) Text(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityText, Flavor: flavor, Data: data, Options: opts})
}

// TextRaw extracts all page text, including ads and navigation.
func (c *Client) TextRaw(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityTextRaw, Flavor: flavor, Data: data, Options: opts})
}

// Title extracts the title of a URL or HTML.
//
// Honored options: UseMetadata.
func (c *Client) Title(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityTitle, Flavor: flavor, Data: data, Options: opts})
}

// Author extracts the author of a URL or HTML.
//
// Deprecated: the service recommends Authors.
func (c *Client) Author(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityAuthor, Flavor: flavor, Data: data, Options: opts})
}

// Authors extracts the authors of a URL or HTML.
func (c *Client) Authors(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityAuthors, Flavor: flavor, Data: data, Options: opts})
}

// Feeds detects RSS/Atom feed links in a URL or HTML.
func (c *Client) Feeds(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityFeeds, Flavor: flavor, Data: data, Options: opts})
}

// Microformats parses microformat data from a URL or HTML.
func (c *Client) Microformats(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityMicroformats, Flavor: flavor, Data: data, Options: opts})
}

// Taxonomy places text, a URL or HTML in the service's taxonomy.
//
// Honored options: ShowSourceText.
func (c *Client) Taxonomy(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityTaxonomy, Flavor: flavor, Data: data, Options: opts})
}

// Combined runs several analyses on a URL in one call.
//
// Honored options: Extract (page-image, entity, keyword, title, author,
// taxonomy, concept, relation, doc-sentiment), ExtractMode, Disambiguate,
// LinkedData, Coreference, Quotations, Sentiment, ShowSourceText, MaxRetrieve.
func (c *Client) Combined(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityCombined, Flavor: flavor, Data: data, Options: opts})
}

// Image extracts the main image of a URL.
//
// Honored options: ExtractMode.
func (c *Client) Image(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityImage, Flavor: flavor, Data: data, Options: opts})
}

// ImageKeywords tags an image with keywords. With FlavorURL, data is the
// page or image URL. With FlavorImage, data is the path of a local file that
// is uploaded as the raw request body.
//
// Honored options: ExtractMode.
func (c *Client) ImageKeywords(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityImageKeywords, Flavor: flavor, Data: data, Options: opts})
}

// PubDate extracts the publication date of a URL or HTML.
func (c *Client) PubDate(ctx context.Context, flavor Flavor, data string, opts *Options) Result {
	return c.Call(ctx, Request{Capability: CapabilityPubDate, Flavor: flavor, Data: data, Options: opts})
}
