// Package alchemy is a client for the AlchemyAPI text-analysis service.
//
// A Client turns a capability (sentiment, entities, keywords, ...), an input
// flavor (text, url, html or image) and optional parameters into a single
// form-encoded POST against the service, and decodes the JSON reply. Every
// call yields exactly one Result: either the response document, untouched,
// or an *Error describing why no document was obtained. Only New reports an
// error directly, when the API key is malformed.
//
//	c, err := alchemy.New(key)
//	if err != nil {
//		return err
//	}
//	res := c.Sentiment(ctx, alchemy.FlavorText, "I love this product", nil)
//	if !res.OK() {
//		return res.Err
//	}
package alchemy
