//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/b2b-ordering-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type itemPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	SKU   string `json:"sku"`
	Stock struct {
		Available int `json:"available"`
	} `json:"stock"`
}

type authPayload struct {
	Token   string `json:"token"`
	Account struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"account"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestBuyerPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	uuidTerm := func(example string) matchers.Matcher {
		return matchers.Term(example, "^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$")
	}
	problemBody := func(typ, title string, status int) matchers.Map {
		return matchers.Map{
			"type":   matchers.S(typ),
			"title":  matchers.S(title),
			"status": matchers.Like(status),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StateItemExists).
		UponReceiving("a request to fetch an existing catalog item").
		WithRequest("GET", "/v1/catalog/items/"+pacttest.ExistingItemID).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":   uuidTerm(pacttest.ExistingItemID),
				"name": matchers.Like(pacttest.ExampleItemName()),
				"sku":  matchers.Like(pacttest.ExampleItemSKU()),
				"price": matchers.StructMatcher{
					"base":     matchers.Like("12.5"),
					"currency": matchers.Term("USD", "^[A-Z]{3}$"),
				},
				"stock": matchers.StructMatcher{
					"available": matchers.Like(40),
					"reserved":  matchers.Like(0),
					"minimum":   matchers.Like(5),
				},
				"active": matchers.Like(true),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateItemMissing).
		UponReceiving("a request for a missing catalog item").
		WithRequest("GET", "/v1/catalog/items/"+pacttest.MissingItemID).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody("/problems/not-found", "Resource Not Found", http.StatusNotFound))
		})

	pact.AddInteraction().
		Given(pacttest.StateBuyerExists).
		UponReceiving("a login with valid credentials").
		WithRequest("POST", "/v1/accounts/login", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"email":    matchers.S(pacttest.BuyerEmail),
				"password": matchers.S(pacttest.BuyerPassword),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"token":     matchers.Like("0d7c2f5e-3a4b-4c1d-9e8f-7a6b5c4d3e2f"),
				"expiresAt": matchers.Like("2024-06-13T10:00:00Z"),
				"account": matchers.StructMatcher{
					"id":                 uuidTerm("5a4b3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d"),
					"email":              matchers.S(pacttest.BuyerEmail),
					"verificationStatus": matchers.Term("pending", "pending|verified|rejected"),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrdersLocked).
		UponReceiving("an order placement without a session").
		WithRequest("POST", "/v1/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleOrderPayload())
		}).
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody("/problems/unauthorized", "Unauthorized", http.StatusUnauthorized))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newPortalClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var item itemPayload
		if err := client.do(ctx, http.MethodGet, "/v1/catalog/items/"+pacttest.ExistingItemID, nil, &item); err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		if item.ID != pacttest.ExistingItemID {
			return fmt.Errorf("expected item %s, got %+v", pacttest.ExistingItemID, item)
		}

		err := client.do(ctx, http.MethodGet, "/v1/catalog/items/"+pacttest.MissingItemID, nil, nil)
		if apiErr, ok := err.(apiError); !ok || apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404 for item %s, got %v", pacttest.MissingItemID, err)
		}

		var auth authPayload
		credentials := map[string]string{"email": pacttest.BuyerEmail, "password": pacttest.BuyerPassword}
		if err := client.do(ctx, http.MethodPost, "/v1/accounts/login", credentials, &auth); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if auth.Token == "" || auth.Account.Email != pacttest.BuyerEmail {
			return fmt.Errorf("unexpected login response %+v", auth)
		}

		err = client.do(ctx, http.MethodPost, "/v1/orders", pacttest.ExampleOrderPayload(), nil)
		if apiErr, ok := err.(apiError); !ok || apiErr.Status() != http.StatusUnauthorized {
			return fmt.Errorf("expected 401 for anonymous order, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type portalClient struct {
	baseURL    string
	httpClient *http.Client
}

func newPortalClient(config pactconsumer.MockServerConfig) *portalClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &portalClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *portalClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
