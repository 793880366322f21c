package outbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaRegistersUnknownSubject(t *testing.T) {
	var registered bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/subjects/meal_events-value/versions":
			registered = true
			w.Write([]byte(`{"id":17}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewSchemaRegistryClient(server.URL)
	id, err := client.EnsureSchema(context.Background(), "meal_events-value", mealLoggedSchema)
	require.NoError(t, err)
	require.Equal(t, 17, id)
	require.True(t, registered)
}

func TestEnsureSchemaReusesExistingSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"id":4}`))
	}))
	defer server.Close()

	client := NewSchemaRegistryClient(server.URL)
	id, err := client.EnsureSchema(context.Background(), "goals_events-value", goalsUpdatedSchema)
	require.NoError(t, err)
	require.Equal(t, 4, id)
}

func TestEnsureSchemaSurfacesRegistryOutage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Fatalf("a registry outage must not trigger registration")
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewSchemaRegistryClient(server.URL)
	_, err := client.EnsureSchema(context.Background(), "meal_events-value", mealLoggedSchema)
	require.Error(t, err)
	require.Contains(t, err.Error(), "meal_events-value")
}
