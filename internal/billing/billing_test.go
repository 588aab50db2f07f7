package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifestylelure/payouts/internal/domain"
)

const referrer = "11111111-1111-4111-8111-111111111111"

// fakeProcessor serves just enough of the subscriptions API.
type fakeProcessor struct {
	metadata map[string]map[string]string
	updates  []url.Values
}

func (f *fakeProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/v1/subscriptions/"):]
	meta, ok := f.metadata[id]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "invalid_request_error",
				"code":    "resource_missing",
				"message": "No such subscription",
			},
		})
		return
	}
	if r.Method == http.MethodPost {
		_ = r.ParseForm()
		f.updates = append(f.updates, r.PostForm)
		if v := r.PostForm.Get("metadata[" + ReferrerKey + "]"); v != "" {
			meta[ReferrerKey] = v
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       id,
		"object":   "subscription",
		"metadata": meta,
	})
}

func newTestClient(t *testing.T, f *fakeProcessor) *Client {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New("sk_test_123", NewBackends(srv.URL, srv.Client()))
}

func TestRetrieve(t *testing.T) {
	f := &fakeProcessor{metadata: map[string]map[string]string{
		"sub_tagged":   {ReferrerKey: referrer, "plan": "scout"},
		"sub_untagged": {},
	}}
	c := newTestClient(t, f)

	tests := []struct {
		name      string
		id        string
		want      *domain.Subscription
		wantError error
	}{
		{name: "Tagged subscription", id: "sub_tagged", want: &domain.Subscription{ID: "sub_tagged", ReferredBy: referrer}},
		{name: "Untagged subscription", id: "sub_untagged", want: &domain.Subscription{ID: "sub_untagged"}},
		{name: "Unknown subscription", id: "sub_missing", wantError: domain.ErrSubscriptionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Retrieve(context.Background(), tt.id)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetReferrer(t *testing.T) {
	f := &fakeProcessor{metadata: map[string]map[string]string{
		"sub_1": {"plan": "scout"},
	}}
	c := newTestClient(t, f)

	require.NoError(t, c.SetReferrer(context.Background(), "sub_1", referrer))
	require.Len(t, f.updates, 1)
	assert.Equal(t, referrer, f.updates[0].Get("metadata[referred_by]"))
	assert.Empty(t, f.updates[0].Get("metadata[plan]"))
	assert.Equal(t, "scout", f.metadata["sub_1"]["plan"])

	sub, err := c.Retrieve(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, referrer, sub.ReferredBy)

	err = c.SetReferrer(context.Background(), "sub_missing", referrer)
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}
