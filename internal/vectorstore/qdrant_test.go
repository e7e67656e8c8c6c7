package vectorstore

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

// TestNewQdrantStore_URLParsing tests URL parsing logic without creating a real client.
// This avoids connection warnings in unit tests.
func TestNewQdrantStore_URLParsing(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantHost string
		wantPort int
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:     "URL without port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334, // Default
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost", // Defaults to localhost
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsedURL, err := url.Parse(tt.urlStr)
			if err != nil {
				t.Fatalf("Failed to parse URL: %v", err)
			}

			// Mirror the derivation NewQdrantStore performs.
			host := parsedURL.Hostname()
			if host == "" {
				host = "localhost"
			}

			port := 6334
			if parsedURL.Port() != "" {
				httpPort, err := strconv.Atoi(parsedURL.Port())
				if err == nil {
					port = httpPort + 1
				}
			}

			if host != tt.wantHost {
				t.Errorf("Host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("Port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

// TestNewQdrantStore_InvalidURL tests that invalid URLs return errors.
func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://invalid")
	if err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name  string
		value *qdrant.Value
		want  any
	}{
		{
			name:  "string",
			value: qdrant.NewValueString("okta"),
			want:  "okta",
		},
		{
			name:  "integer",
			value: qdrant.NewValueInt(42),
			want:  int64(42),
		},
		{
			name:  "bool",
			value: qdrant.NewValueBool(true),
			want:  true,
		},
		{
			name:  "double",
			value: qdrant.NewValueDouble(0.75),
			want:  0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertValue(tt.value)
			if got != tt.want {
				t.Errorf("convertValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"company":    qdrant.NewValueString("mandiant"),
		"has_images": qdrant.NewValueBool(false),
		"missing":    nil,
	}

	got := convertPayloadToMap(payload)

	if got["company"] != "mandiant" {
		t.Errorf("company = %v, want mandiant", got["company"])
	}
	if got["has_images"] != false {
		t.Errorf("has_images = %v, want false", got["has_images"])
	}
	if _, ok := got["missing"]; ok {
		t.Error("nil values should be skipped")
	}
}
