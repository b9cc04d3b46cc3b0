package billing

import (
	"context"
)

// Client is an immutable request builder for the billing API.
//
// Each At call returns a new Client sharing the same credential,
// subdomain, format, and transport, with the segment appended to its
// path. A Client is therefore safe to reuse as the base of several
// independent chains, and safe for concurrent use: nothing is mutated
// after construction.
type Client struct {
	apiKey    string
	subdomain string
	domain    string
	format    Format
	transport Transport
	path      []string
}

// Option configures a Client at construction.
type Option func(*Client) error

// WithFormat sets the response format (json or xml, case-insensitive).
// An unrecognized format fails New with a *ConfigurationError.
func WithFormat(format string) Option {
	return func(c *Client) error {
		f, err := ParseFormat(format)
		if err != nil {
			return err
		}
		c.format = f
		return nil
	}
}

// WithTransport overrides the transport that executes built requests.
// Mainly for stubbing in tests.
func WithTransport(t Transport) Option {
	return func(c *Client) error {
		c.transport = t
		return nil
	}
}

// WithDomain overrides the URL template requests are built against. The
// template must contain a single %s for the subdomain.
func WithDomain(domain string) Option {
	return func(c *Client) error {
		if domain == "" {
			return &ConfigurationError{Reason: "domain template must not be empty"}
		}
		c.domain = domain
		return nil
	}
}

// New creates a client for the given account. Configuration errors
// (such as an invalid response format) are reported here, never
// deferred to the first request.
func New(apiKey, subdomain string, opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:    apiKey,
		subdomain: subdomain,
		domain:    DefaultDomain,
		format:    FormatJSON,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	return c, nil
}

// Format returns the response format the client was configured with.
func (c *Client) Format() Format { return c.format }

// Subdomain returns the account subdomain the client was configured with.
func (c *Client) Subdomain() string { return c.subdomain }

// At returns a new client with the given segments appended to the
// request path. The receiver is never modified, so chains built from a
// shared base do not contaminate each other.
func (c *Client) At(segments ...string) *Client {
	next := *c
	next.path = make([]string, 0, len(c.path)+len(segments))
	next.path = append(next.path, c.path...)
	next.path = append(next.path, segments...)
	return &next
}

// Build resolves the accumulated chain and arguments into a request
// descriptor without executing it.
func (c *Client) Build(args Args) (Request, error) {
	return buildRequest(c.domain, c.subdomain, c.format, c.path, args)
}

// Call resolves the chain and hands the request to the transport. The
// transport's result and errors are returned unchanged; the client
// performs no retries and no error translation.
func (c *Client) Call(ctx context.Context, args Args) (any, error) {
	req, err := c.Build(args)
	if err != nil {
		return nil, err
	}
	return c.transport.Do(ctx, req, c.apiKey)
}

// Create calls the chain with the create action (POST).
func (c *Client) Create(ctx context.Context, args Args) (any, error) {
	return c.At("create").Call(ctx, args)
}

// Read calls the chain with the read action (GET).
func (c *Client) Read(ctx context.Context, args Args) (any, error) {
	return c.At("read").Call(ctx, args)
}

// Update calls the chain with the update action (PUT).
func (c *Client) Update(ctx context.Context, args Args) (any, error) {
	return c.At("update").Call(ctx, args)
}

// Delete calls the chain with the delete action (DELETE).
func (c *Client) Delete(ctx context.Context, args Args) (any, error) {
	return c.At("delete").Call(ctx, args)
}
