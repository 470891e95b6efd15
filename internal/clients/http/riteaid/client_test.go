package riteaid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{
		StoresURL: server.URL + "/services/ext/v2/stores/getStores",
		SlotsURL:  server.URL + "/services/ext/v2/vaccine/checkSlots",
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	client, err := NewClient(cfg, server.Client())
	require.NoError(t, err)
	return client
}

func TestGetStores_SendsFixedParametersAndDecodes(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Data":{"stores":[
			{"storeNumber":100,"address":"1 Main St","zipcode":"10001","fullPhone":"555-0001","extra":"ignored"},
			{"storeNumber":200,"address":"2 Main St","zipcode":"10001","fullPhone":"555-0002"}
		]},"Status":"SUCCESS"}`))
	})

	stores, err := client.GetStores(context.Background(), "10001")
	require.NoError(t, err)
	require.Equal(t, "/services/ext/v2/stores/getStores", gotPath)
	require.Equal(t, "10001", gotQuery.Get("address"))
	require.Equal(t, "PREF-112", gotQuery.Get("attrFilter"))
	require.Equal(t, "2", gotQuery.Get("fetchMechanismVersion"))
	require.Equal(t, "50", gotQuery.Get("radius"))
	require.Len(t, stores, 2)
	require.Equal(t, int32(100), *stores[0].StoreNumber)
	require.Equal(t, "1 Main St", *stores[0].Address)
	require.Equal(t, "10001", *stores[0].ZipCode)
	require.Equal(t, "555-0002", *stores[1].FullPhone)
}

func TestGetStores_UsesConfiguredParameters(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"Data":{"stores":[]}}`))
	}, func(cfg *Config) {
		cfg.AttrFilter = "PREF-999"
		cfg.FetchMechanismVersion = "3"
		cfg.Radius = "25"
	})

	stores, err := client.GetStores(context.Background(), "94103")
	require.NoError(t, err)
	require.Empty(t, stores)
	require.Equal(t, "94103", gotQuery.Get("address"))
	require.Equal(t, "PREF-999", gotQuery.Get("attrFilter"))
	require.Equal(t, "3", gotQuery.Get("fetchMechanismVersion"))
	require.Equal(t, "25", gotQuery.Get("radius"))
}

func TestGetStores_MissingFieldIsDecodeError(t *testing.T) {
	bodies := map[string]string{
		"missing envelope":  `{}`,
		"missing stores":    `{"Data":{}}`,
		"null stores":       `{"Data":{"stores":null}}`,
		"missing phone":     `{"Data":{"stores":[{"storeNumber":1,"address":"a","zipcode":"z"}]}}`,
		"missing number":    `{"Data":{"stores":[{"address":"a","zipcode":"z","fullPhone":"p"}]}}`,
		"wrong number type": `{"Data":{"stores":[{"storeNumber":"1","address":"a","zipcode":"z","fullPhone":"p"}]}}`,
		"not json":          `<html>maintenance</html>`,
		"empty body":        ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			_, err := client.GetStores(context.Background(), "10001")
			require.ErrorIs(t, err, ErrDecode)
			require.NotErrorIs(t, err, ErrTransport)
		})
	}
}

func TestGetStores_NonSuccessStatusIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetStores(context.Background(), "10001")
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorContains(t, err, "503")
}

func TestGetStores_UnreachableUpstreamIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client, err := NewClient(Config{StoresURL: endpoint, SlotsURL: endpoint}, nil)
	require.NoError(t, err)

	_, err = client.GetStores(context.Background(), "10001")
	require.ErrorIs(t, err, ErrTransport)
}

func TestCheckSlots_DecodesMapping(t *testing.T) {
	var gotRequest *url.URL
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r.URL
		_, _ = w.Write([]byte(`{"Data":{"slots":{"1":true,"2":false}},"Status":"SUCCESS"}`))
	})

	slots, err := client.CheckSlots(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, "/services/ext/v2/vaccine/checkSlots", gotRequest.Path)
	require.Equal(t, "100", gotRequest.Query().Get("storeNumber"))
	require.Equal(t, map[string]bool{"1": true, "2": false}, slots)
}

func TestCheckSlots_MissingSlotsIsDecodeError(t *testing.T) {
	cases := map[string]string{
		"missing slots":       `{"Data":{}}`,
		"null slot flag":      `{"Data":{"slots":{"1":true,"2":null}}}`,
		"lowercase envelope":  `{"data":{"slots":{"1":true,"2":false}}}`,
		"uppercase slots key": `{"Data":{"SLOTS":{"1":true,"2":false}}}`,
		"trailing data":       `{"Data":{"slots":{"1":true,"2":false}}} {"extra":1}`,
		"trailing garbage":    `{"Data":{"slots":{"1":true,"2":false}}}xyz`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			slots, err := client.CheckSlots(context.Background(), 100)
			require.ErrorIs(t, err, ErrDecode)
			require.NotErrorIs(t, err, ErrTransport)
			require.Nil(t, slots)
		})
	}
}

func TestCheckSlots_TrailingWhitespaceIsAccepted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{\"Data\":{\"slots\":{\"1\":true,\"2\":false}}}\n\n"))
	})

	slots, err := client.CheckSlots(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"1": true, "2": false}, slots)
}

func TestGetStores_FieldCaseMismatchIsDecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Data":{"stores":[{"StoreNumber":100,"address":"1 Main St","zipcode":"10001","fullPhone":"555-0001"}]}}`))
	})

	_, err := client.GetStores(context.Background(), "10001")
	require.ErrorIs(t, err, ErrDecode)
}

func TestCheckSlots_DeadlineIsTransportError(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	_, err := client.CheckSlots(context.Background(), 100)
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_AppliesDefaultsAndValidates(t *testing.T) {
	client, err := NewClient(Config{}, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultStoresURL, client.cfg.StoresURL)
	require.Equal(t, DefaultSlotsURL, client.cfg.SlotsURL)
	require.Equal(t, DefaultAttrFilter, client.cfg.AttrFilter)
	require.Equal(t, DefaultFetchMechanismVersion, client.cfg.FetchMechanismVersion)
	require.Equal(t, DefaultRadius, client.cfg.Radius)
	require.Equal(t, DefaultTimeout, client.cfg.Timeout)

	_, err = NewClient(Config{StoresURL: "/relative/path"}, nil)
	require.Error(t, err)
}
