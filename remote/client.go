package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clbanning/mxj/v2"
	"go.uber.org/zap"
)

const (
	connectTimeout = 30 * time.Second
	requestTimeout = 60 * time.Second
	snippetLen     = 200
	debugBodyLen   = 400
)

// Client talks to the remote shop's webservice. All requests are
// read-only entity fetches plus the binary image download endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	domain     string
	customIP   string
	debug      bool
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithCustomIP pins the API hostname to an explicit IP, for remote shops
// whose domain the importing server cannot resolve. Transport-level only.
func WithCustomIP(ip string) Option {
	return func(c *Client) { c.customIP = strings.TrimSpace(ip) }
}

// WithDebug enables request/response metadata logging. Bodies are never
// logged beyond a short prefix.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// WithTimeout overrides the total per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient builds a client for the given shop URL and webservice key.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
	if u, err := url.Parse(c.baseURL); err == nil {
		c.domain = u.Hostname()
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		// Remote shops on private networks routinely run self-signed
		// certificates; verification stays off like the rest of the
		// deployment tooling around them.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if c.customIP != "" && c.domain != "" {
				host, port, err := net.SplitHostPort(addr)
				if err == nil && host == c.domain {
					addr = net.JoinHostPort(c.customIP, port)
				}
			}
			return dialer.DialContext(ctx, "tcp4", addr)
		},
	}
	c.httpClient = &http.Client{
		Timeout:   requestTimeout,
		Transport: transport,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured shop URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) logf(format string, args ...interface{}) {
	if c.debug {
		zap.L().Debug(fmt.Sprintf(format, args...))
	}
}

// get performs one webservice request and returns the decoded payload.
// JSON is requested, but the webservice is free to answer XML; both are
// accepted. Anything else fails with UnparsableResponse.
func (c *Client) get(ctx context.Context, resource string, params url.Values) (map[string]interface{}, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("output_format", "JSON")

	reqURL := c.baseURL + "/api/" + strings.TrimLeft(resource, "/") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{Kind: TransportOther, Resource: resource, Err: err}
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	if c.domain != "" {
		req.Host = c.domain
	}

	c.logf("api request: %s", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := classify(err)
		c.logf("api request failed (%s): %v", kind, err)
		return nil, &TransportError{Kind: kind, Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: classify(err), Resource: resource, Err: err}
	}

	c.logf("api response: HTTP %d, first %d bytes: %s", resp.StatusCode, debugBodyLen, snippet(body, debugBodyLen))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Kind:       TransportHTTPStatus,
			Resource:   resource,
			StatusCode: resp.StatusCode,
			Snippet:    snippet(body, snippetLen),
		}
	}

	return c.parse(resource, body)
}

// parse decodes a webservice payload: JSON first, XML as fallback, HTML
// and everything else rejected with a bounded snippet.
func (c *Client) parse(resource string, body []byte) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(string(body))

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if m, ok := decodeJSON(body); ok {
			return m, nil
		}
		// Not valid JSON after all; fall through to the XML check.
	}

	lower := strings.ToLower(trimmed)
	isHTML := strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
	isXML := strings.HasPrefix(lower, "<?xml") ||
		strings.Contains(lower, "<prestashop") ||
		(strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, "</"))

	if isXML && !isHTML {
		if m, err := mxj.NewMapXml(body); err == nil {
			return unwrapRoot(map[string]interface{}(m)), nil
		}
	}

	return nil, &UnparsableResponse{Resource: resource, Snippet: snippet([]byte(trimmed), snippetLen)}
}

// unwrapRoot drops the single envelope element XML payloads carry
// ("prestashop") so XML and JSON payloads look alike to callers.
func unwrapRoot(m map[string]interface{}) map[string]interface{} {
	if len(m) != 1 {
		return m
	}
	for _, v := range m {
		if inner, ok := v.(map[string]interface{}); ok {
			return inner
		}
	}
	return m
}

// entity extracts a single entity out of a payload wrapper, accepting
// both the singular ("product") and plural first-row ("products"[0])
// shapes the webservice produces.
func entity(data map[string]interface{}, singular, plural string) (map[string]interface{}, bool) {
	if row, ok := data[singular].(map[string]interface{}); ok {
		return row, true
	}
	rows := asSlice(data[plural])
	if len(rows) > 0 {
		if row, ok := rows[0].(map[string]interface{}); ok {
			return row, true
		}
	}
	return nil, false
}

func (c *Client) fetchEntity(ctx context.Context, resource string, id int, singular, plural string) (Record, error) {
	data, err := c.get(ctx, fmt.Sprintf("%s/%d", resource, id), url.Values{"display": {"full"}})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && te.StatusCode == http.StatusNotFound {
			return Record{}, &NotFoundError{Resource: singular, ID: id}
		}
		return Record{}, err
	}
	row, ok := entity(data, singular, plural)
	if !ok {
		return Record{}, &NotFoundError{Resource: singular, ID: id}
	}
	return RecordFrom(row), nil
}

// Product fetches one full remote product.
func (c *Client) Product(ctx context.Context, id int) (Record, error) {
	return c.fetchEntity(ctx, "products", id, "product", "products")
}

// Category fetches one full remote category.
func (c *Client) Category(ctx context.Context, id int) (Record, error) {
	return c.fetchEntity(ctx, "categories", id, "category", "categories")
}

// Feature fetches one product feature definition.
func (c *Client) Feature(ctx context.Context, id int) (Record, error) {
	return c.fetchEntity(ctx, "product_features", id, "product_feature", "product_features")
}

// FeatureValue fetches one feature value.
func (c *Client) FeatureValue(ctx context.Context, id int) (Record, error) {
	return c.fetchEntity(ctx, "product_feature_values", id, "product_feature_value", "product_feature_values")
}

// ProductOption fetches one attribute group ("Size", "Color").
func (c *Client) ProductOption(ctx context.Context, id int) (Record, error) {
	return c.fetchEntity(ctx, "product_options", id, "product_option", "product_options")
}

// ProductOptionValue fetches one attribute value ("M", "Blue").
func (c *Client) ProductOptionValue(ctx context.Context, id int) (Record, error) {
	return c.fetchEntity(ctx, "product_option_values", id, "product_option_value", "product_option_values")
}

// Combination fetches one product combination.
func (c *Client) Combination(ctx context.Context, id int) (Record, error) {
	return c.fetchEntity(ctx, "combinations", id, "combination", "combinations")
}

// ListProducts fetches remote products for the browse panel, with
// optional default-category and name-search filters.
func (c *Client) ListProducts(ctx context.Context, limit, offset int, categoryID int, search string) ([]Record, error) {
	params := url.Values{
		"display": {"full"},
		"limit":   {fmt.Sprintf("%d,%d", offset, limit)},
	}
	if categoryID > 0 {
		params.Set("filter[id_category_default]", fmt.Sprintf("%d", categoryID))
	}
	if search != "" {
		params.Set("filter[name]", "%"+search+"%")
	}
	data, err := c.get(ctx, "products", params)
	if err != nil {
		return nil, err
	}
	rows := asSlice(data["products"])
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]interface{}); ok {
			out = append(out, RecordFrom(m))
		}
	}
	return out, nil
}

// ProductImageIDs lists the remote image ids attached to a product.
func (c *Client) ProductImageIDs(ctx context.Context, productID int) ([]int, error) {
	data, err := c.get(ctx, fmt.Sprintf("images/products/%d", productID), url.Values{"display": {"full"}})
	if err != nil {
		return nil, err
	}
	rows := asSlice(data["images"])
	if len(rows) == 0 {
		if m, ok := data["image"].(map[string]interface{}); ok {
			rows = asSlice(m["declination"])
		}
	}
	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		id := toInt(m["id"])
		if id == 0 {
			id = toInt(m["-id"])
		}
		if id > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// StockRow is one remote stock line; CombinationID is zero for the
// product-level line.
type StockRow struct {
	ID            int
	Quantity      int
	CombinationID int
}

// StockTotal sums the remote stock lines of a product and returns the
// per-combination detail.
func (c *Client) StockTotal(ctx context.Context, productID int) (int, []StockRow, error) {
	params := url.Values{
		"filter[id_product]": {fmt.Sprintf("%d", productID)},
		"display":            {"[id,quantity,id_product_attribute]"},
	}
	data, err := c.get(ctx, "stock_availables", params)
	if err != nil {
		return 0, nil, err
	}
	total := 0
	rows := make([]StockRow, 0)
	for _, raw := range asSlice(data["stock_availables"]) {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		row := StockRow{
			ID:            toInt(m["id"]),
			Quantity:      toInt(m["quantity"]),
			CombinationID: toInt(m["id_product_attribute"]),
		}
		total += row.Quantity
		rows = append(rows, row)
	}
	return total, rows, nil
}

// DownloadProductImage fetches the binary of one product image.
func (c *Client) DownloadProductImage(ctx context.Context, productID, imageID int) ([]byte, error) {
	return c.download(ctx, fmt.Sprintf("%s/api/images/products/%d/%d", c.baseURL, productID, imageID))
}

// DownloadCategoryImage fetches the binary of a category's image.
func (c *Client) DownloadCategoryImage(ctx context.Context, categoryID int) ([]byte, error) {
	return c.download(ctx, fmt.Sprintf("%s/api/images/categories/%d", c.baseURL, categoryID))
}

func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Kind: TransportOther, Resource: "image", Err: err}
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "image/jpeg")
	if c.domain != "" {
		req.Host = c.domain
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: classify(err), Resource: "image", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: classify(err), Resource: "image", Err: err}
	}
	c.logf("image download: %s, HTTP %d, %d bytes", rawURL, resp.StatusCode, len(data))

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Kind:       TransportHTTPStatus,
			Resource:   "image",
			StatusCode: resp.StatusCode,
			Snippet:    snippet(data, snippetLen),
		}
	}
	return data, nil
}

// TestConnection performs a minimal listing request against the remote.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.get(ctx, "products", url.Values{"limit": {"1"}})
	return err
}

func snippet(body []byte, n int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n]
	}
	return s
}

// decodeJSON decodes a JSON body. The webservice answers empty
// collections with a bare [] instead of the usual {"resource": [...]}
// wrapper; that shape decodes to an empty payload.
func decodeJSON(body []byte) (map[string]interface{}, bool) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case []interface{}:
		return map[string]interface{}{}, true
	}
	return nil, false
}
