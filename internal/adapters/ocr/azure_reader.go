package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const apiVersion = "2023-07-31"

// AzureReader implements the TextExtractor port against the Azure document
// analysis REST API (prebuilt-read model): submit the image, then poll the
// returned operation until it completes.
type AzureReader struct {
	session      *http.Client
	endpoint     string
	key          string
	pollInterval time.Duration
}

func NewAzureReader(endpoint, key string) (*AzureReader, error) {
	if endpoint == "" || key == "" {
		return nil, errors.New("azure ocr endpoint and key are required")
	}

	return &AzureReader{
		session:      &http.Client{Timeout: 30 * time.Second},
		endpoint:     strings.TrimRight(endpoint, "/"),
		key:          key,
		pollInterval: time.Second,
	}, nil
}

type analyzeResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Pages []struct {
			Lines []struct {
				Content string `json:"content"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult"`
}

// ExtractText submits the photo for analysis and blocks until the service
// reports a result. Lines are concatenated in reading order with single
// spaces.
func (a *AzureReader) ExtractText(ctx context.Context, photoPath string) (string, error) {
	opURL, err := a.submit(ctx, photoPath)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	result, err := a.poll(ctx, opURL)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	var lines []string
	for _, page := range result.AnalyzeResult.Pages {
		for _, line := range page.Lines {
			lines = append(lines, line.Content)
		}
	}

	return strings.TrimSpace(strings.Join(lines, " ")), nil
}

func (a *AzureReader) submit(ctx context.Context, photoPath string) (string, error) {
	f, err := os.Open(photoPath)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	url := fmt.Sprintf(
		"%s/formrecognizer/documentModels/prebuilt-read:analyze?api-version=%s",
		a.endpoint, apiVersion,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, f)
	if err != nil {
		return "", fmt.Errorf("create analyze request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := a.session.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit document: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", errors.New("submit document: missing Operation-Location header")
	}
	return opURL, nil
}

func (a *AzureReader) poll(ctx context.Context, opURL string) (*analyzeResult, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create poll request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", a.key)

		resp, err := a.session.Do(req)
		if err != nil {
			return nil, fmt.Errorf("poll analysis: %w", err)
		}

		var result analyzeResult
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("poll analysis: decode response: %w", err)
		}

		switch result.Status {
		case "succeeded":
			return &result, nil
		case "failed":
			return nil, errors.New("poll analysis: analysis failed")
		}

		timer := time.NewTimer(a.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
