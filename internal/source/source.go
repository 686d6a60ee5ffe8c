package source

import (
	"context"

	"github.com/rdce-vr/Local-Track/internal/model"
)

// Parser turns a raw response body into prices or fails with *ParseError.
type Parser interface {
	Parse(body []byte) (model.Prices, error)
}

// HTTPSource fetches one URL and parses it.
type HTTPSource struct {
	name   string
	url    string
	client *Client
	parser Parser
}

// NewHTTPSource combines a client and a parser into a source.
func NewHTTPSource(name, url string, client *Client, parser Parser) *HTTPSource {
	return &HTTPSource{name: name, url: url, client: client, parser: parser}
}

// Name returns the source name recorded with each observation.
func (s *HTTPSource) Name() string {
	return s.name
}

// URL returns the endpoint being fetched.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch retrieves and parses the source. Errors are *NetworkError or
// *ParseError.
func (s *HTTPSource) Fetch(ctx context.Context) (model.Prices, error) {
	body, err := s.client.Get(ctx, s.name, s.url)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(body)
}
