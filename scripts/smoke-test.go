//go:build ignore

// smoke-test.go - End-to-end smoke test against a running reporter server
//
// Test Flow:
// 1. Check server health
// 2. Create a reporter identity from a passphrase
// 3. Verify the identity status endpoint returns the commitment
// 4. Submit a hazard report with the session token
// 5. Poll the report until it is anchored (or report the pending state)
// 6. Optionally clear the identity
//
// Usage:
//   go run scripts/smoke-test.go [-url http://localhost:8080] [-clear]
//
// Flags:
//   -url    Base URL of the reporter server
//   -clear  Clear the reporter identity after the test

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorReset  = "\033[0m"
)

var (
	baseURL = flag.String("url", "http://localhost:8080", "Base URL of the reporter server")
	clear   = flag.Bool("clear", false, "Clear the reporter identity after the test")
)

func main() {
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	step("Checking server health")
	body, err := get(client, *baseURL+"/health", http.StatusOK)
	if err != nil {
		fail("health check: %v", err)
	}
	ok("server is up: %s", string(body))

	step("Creating reporter identity")
	var created struct {
		Identity struct {
			Secret     string `json:"secret"`
			Commitment string `json:"commitment"`
		} `json:"identity"`
		SessionToken string `json:"session_token"`
	}
	if err := postJSON(client, *baseURL+"/api/v1/identity", map[string]string{
		"passphrase": fmt.Sprintf("smoke test %d", time.Now().UnixNano()),
	}, "", http.StatusCreated, &created); err != nil {
		fail("create identity: %v", err)
	}
	ok("commitment: %s", created.Identity.Commitment)
	if created.SessionToken == "" {
		fail("server returned no session token")
	}

	step("Verifying identity status")
	var status struct {
		HasIdentity bool   `json:"has_identity"`
		Commitment  string `json:"commitment"`
	}
	body, err = get(client, *baseURL+"/api/v1/identity", http.StatusOK)
	if err != nil {
		fail("identity status: %v", err)
	}
	if err := json.Unmarshal(body, &status); err != nil {
		fail("decode status: %v", err)
	}
	if !status.HasIdentity || status.Commitment != created.Identity.Commitment {
		fail("status does not match created identity: %+v", status)
	}
	ok("identity registered")

	step("Submitting hazard report")
	var submitted struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		ScaledLat int64  `json:"scaled_lat"`
		ScaledLon int64  `json:"scaled_lon"`
	}
	if err := postJSON(client, *baseURL+"/api/v1/reports", map[string]any{
		"hazard_type": "pothole",
		"latitude":    40.7128,
		"longitude":   -74.006,
		"description": "smoke test report",
	}, created.SessionToken, http.StatusCreated, &submitted); err != nil {
		fail("submit report: %v", err)
	}
	ok("report %s accepted (scaled %d,%d)", submitted.ID, submitted.ScaledLat, submitted.ScaledLon)

	step("Waiting for report to anchor")
	anchored := false
	for i := 0; i < 12; i++ {
		var r struct {
			Status       string `json:"status"`
			AnchorTxHash string `json:"anchor_tx_hash"`
		}
		body, err = get(client, *baseURL+"/api/v1/reports/"+submitted.ID, http.StatusOK)
		if err != nil {
			fail("get report: %v", err)
		}
		if err := json.Unmarshal(body, &r); err != nil {
			fail("decode report: %v", err)
		}
		if r.Status == "anchored" {
			ok("report anchored in tx %s", r.AnchorTxHash)
			anchored = true
			break
		}
		if r.Status == "failed" {
			fail("report anchoring failed")
		}
		time.Sleep(5 * time.Second)
	}
	if !anchored {
		warn("report still pending (anchoring disabled or slow chain)")
	}

	if *clear {
		step("Clearing reporter identity")
		req, err := http.NewRequest(http.MethodDelete, *baseURL+"/api/v1/identity", nil)
		if err != nil {
			fail("build clear request: %v", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			fail("clear identity: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fail("clear identity: status %d", resp.StatusCode)
		}
		ok("identity cleared")
	}

	fmt.Printf("\n%sSmoke test passed%s\n", colorGreen, colorReset)
}

func get(client *http.Client, url string, wantStatus int) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func postJSON(client *http.Client, url string, payload any, token string, wantStatus int, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}

func step(format string, args ...any) {
	fmt.Printf("%s==> %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func ok(format string, args ...any) {
	fmt.Printf("%s    %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
}

func warn(format string, args ...any) {
	fmt.Printf("%s    %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func fail(format string, args ...any) {
	fmt.Printf("%s    FAIL: %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
