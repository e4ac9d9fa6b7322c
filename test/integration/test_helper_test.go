package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

// BaseURL is the API under test. Override with INTEGRATION_BASE_URL.
// The server must run with DISABLE_SCHEDULER=true so the cron jobs do not
// race the explicit finalize/resolve calls below.
var BaseURL = "http://localhost:8080"

func TestMain(m *testing.M) {
	if url := os.Getenv("INTEGRATION_BASE_URL"); url != "" {
		BaseURL = url
	} else if os.Getenv("RUN_INTEGRATION") == "" {
		// 未配置集成环境时跳过
		fmt.Println("RUN_INTEGRATION not set, skipping integration tests")
		os.Exit(0)
	}

	// 等待服务启动
	time.Sleep(2 * time.Second)

	code := m.Run()
	os.Exit(code)
}

// postJSON posts a JSON payload and decodes the response body into out when
// out is non-nil. Returns the HTTP status code.
func postJSON(t *testing.T, path string, payload interface{}, out interface{}) int {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	resp, err := http.Post(BaseURL+path, "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response of %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

// getJSON fetches a path and decodes the response body into out.
func getJSON(t *testing.T, path string, out interface{}) int {
	t.Helper()

	resp, err := http.Get(BaseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response of %s: %v", path, err)
		}
	}
	return resp.StatusCode
}
