package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"WooCostAdjuster/internal/wc-api-go/options"
	"WooCostAdjuster/internal/wc-api-go/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	parameters := url.Values{}
	parameters.Set("foo", "bar")

	methods := []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	Assert := assert.New(t)

	for _, method := range methods {
		t.Logf("Test method: %s", method)
		request := request.Request{
			Method:   method,
			Endpoint: "products",
			Values:   parameters,
		}

		sender := NewSenderMock(getResponseMock(method))
		client := Client{
			sender: sender,
		}

		r, _ := executeRequest(client, &request)

		body, _ := io.ReadAll(r.Body)
		Assert.Equal(getResponseBody(method), string(body))
		Assert.Len(sender.Requests, 1)
		Assert.Equal(method, sender.Requests[0].Method)

		err := r.Body.Close()
		if err != nil {
			t.Errorf("Failed to close body of response")
		}
	}
}

func TestFactoryClient(t *testing.T) {
	var gotPath, gotQuery, gotUser, gotPass, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, gotPass, _ = r.BasicAuth()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	defer srv.Close()

	factory := Factory{}
	c := factory.NewClient(options.Basic{
		URL:    srv.URL,
		Key:    "ck",
		Secret: "cs",
		Options: options.Advanced{
			WPAPI: true,
		},
	})

	r, err := c.Put(context.Background(), "products/7", map[string]string{"name": "Mug"})
	require.NoError(t, err)
	defer r.Body.Close()

	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, "/wp-json/wc/v3/products/7", gotPath)
	assert.Empty(t, gotQuery)
	assert.Equal(t, "ck", gotUser)
	assert.Equal(t, "cs", gotPass)
	assert.JSONEq(t, `{"name":"Mug"}`, gotBody)
}

func TestFactoryClientQueryStringAuth(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	factory := Factory{}
	c := factory.NewClient(options.Basic{
		URL:    srv.URL,
		Key:    "ck",
		Secret: "cs",
		Options: options.Advanced{
			WPAPI:           true,
			QueryStringAuth: true,
		},
	})

	params := url.Values{}
	params.Set("page", "2")
	r, err := c.Get(context.Background(), "products", params)
	require.NoError(t, err)
	defer r.Body.Close()

	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "ck", gotQuery.Get("consumer_key"))
	assert.Equal(t, "cs", gotQuery.Get("consumer_secret"))
	assert.Equal(t, "2", params.Get("page"))
	assert.Empty(t, params.Get("consumer_key"))
}

func executeRequest(c Client, r *request.Request) (*http.Response, error) {
	ctx := context.Background()
	switch r.Method {
	case "GET":
		return c.Get(ctx, r.Endpoint, r.Values)
	case "POST":
		return c.Post(ctx, r.Endpoint, r.Values, r.Body)
	case "PUT":
		return c.Put(ctx, r.Endpoint, r.Values)
	case "DELETE":
		return c.Delete(ctx, r.Endpoint, r.Values)
	case "OPTIONS":
		return c.Options(ctx, r.Endpoint)
	default:
		return nil, errors.New("incorrect request method")
	}
}

func getResponseMock(method string) *http.Response {
	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(getResponseBody(method))),
		Header:     http.Header{},
	}
}

func getResponseBody(method string) string {
	return "Hello " + method + "!"
}
