package riteaid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultStoresURL is the store locator endpoint.
	DefaultStoresURL = "https://www.riteaid.com/services/ext/v2/stores/getStores"
	// DefaultSlotsURL is the slot-check endpoint.
	DefaultSlotsURL = "https://www.riteaid.com/services/ext/v2/vaccine/checkSlots"

	DefaultAttrFilter            = "PREF-112"
	DefaultFetchMechanismVersion = "2"
	DefaultRadius                = "50"

	// DefaultTimeout bounds every outbound call, body decoding included.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 4 << 20
)

var (
	// ErrTransport wraps failures to complete the HTTP exchange, including non-2xx answers.
	ErrTransport = errors.New("riteaid transport error")
	// ErrDecode wraps bodies that do not match the expected envelope.
	ErrDecode = errors.New("riteaid decode error")
)

// Config holds the endpoints and fixed query parameters for the upstream API.
type Config struct {
	StoresURL             string
	SlotsURL              string
	AttrFilter            string
	FetchMechanismVersion string
	Radius                string
	Timeout               time.Duration
}

// Client talks to the RiteAid store locator and slot-check endpoints.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient validates the configuration and applies defaults. A nil httpClient
// gets an OpenTelemetry-instrumented transport.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg.StoresURL = strings.TrimSpace(cfg.StoresURL)
	cfg.SlotsURL = strings.TrimSpace(cfg.SlotsURL)
	if cfg.StoresURL == "" {
		cfg.StoresURL = DefaultStoresURL
	}
	if cfg.SlotsURL == "" {
		cfg.SlotsURL = DefaultSlotsURL
	}
	for _, raw := range []string{cfg.StoresURL, cfg.SlotsURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse upstream URL %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("upstream URL %q must be absolute", raw)
		}
	}
	if cfg.AttrFilter == "" {
		cfg.AttrFilter = DefaultAttrFilter
	}
	if cfg.FetchMechanismVersion == "" {
		cfg.FetchMechanismVersion = DefaultFetchMechanismVersion
	}
	if cfg.Radius == "" {
		cfg.Radius = DefaultRadius
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{httpClient: httpClient, cfg: cfg}, nil
}

// GetStores lists the stores near the postal code.
func (c *Client) GetStores(ctx context.Context, postalCode string) ([]Store, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("riteaid client not configured")
	}
	params := []queryParam{
		{name: "address", value: postalCode},
		{name: "attrFilter", value: c.cfg.AttrFilter},
		{name: "fetchMechanismVersion", value: c.cfg.FetchMechanismVersion},
		{name: "radius", value: c.cfg.Radius},
	}
	var body GetStoresResponse
	if err := c.getJSON(ctx, c.cfg.StoresURL, params, &body); err != nil {
		return nil, err
	}
	stores, err := body.StoreList()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return stores, nil
}

// CheckSlots returns the raw slot mapping for a store.
func (c *Client) CheckSlots(ctx context.Context, storeNumber int32) (map[string]bool, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("riteaid client not configured")
	}
	var body CheckSlotsResponse
	if err := c.getJSON(ctx, c.cfg.SlotsURL, []queryParam{{name: "storeNumber", value: storeNumber}}, &body); err != nil {
		return nil, err
	}
	slots, err := body.SlotMap()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return slots, nil
}

type queryParam struct {
	name  string
	value any
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params []queryParam, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := newGetRequest(ctx, endpoint, params)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: unexpected status %s", ErrTransport, resp.Status)
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		return classifyBodyError(ctx, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return fmt.Errorf("%w: trailing data after JSON body", ErrDecode)
		}
		return classifyBodyError(ctx, err)
	}
	return nil
}

func classifyBodyError(ctx context.Context, err error) error {
	if isDecodeFailure(ctx, err) {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return fmt.Errorf("%w: read body: %w", ErrTransport, err)
}

func newGetRequest(ctx context.Context, endpoint string, params []queryParam) (*http.Request, error) {
	queryURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	queryValues := queryURL.Query()
	for _, p := range params {
		queryFrag, err := runtime.StyleParamWithLocation("form", true, p.name, runtime.ParamLocationQuery, p.value)
		if err != nil {
			return nil, fmt.Errorf("encode query parameter %s: %w", p.name, err)
		}
		parsed, err := url.ParseQuery(queryFrag)
		if err != nil {
			return nil, fmt.Errorf("parse query parameter %s: %w", p.name, err)
		}
		for k, v := range parsed {
			for _, v2 := range v {
				queryValues.Add(k, v2)
			}
		}
	}
	queryURL.RawQuery = queryValues.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func isDecodeFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, errFieldCase) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
