package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/Flames4fun/csl-core/tools"
)

const (
	fetchDefaultBodyLimit = 5 * 1024 * 1024
	fetchMaxTimeout       = 120 * time.Second
)

// Fetch retrieves web content and converts it to the requested format.
type Fetch struct {
	*tools.BaseTool
	client    *http.Client
	bodyLimit int64
}

// FetchRequest is the tool's input.
type FetchRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Timeout int    `json:"timeout,omitempty"`
}

// FetchResponse is the tool's output.
type FetchResponse struct {
	Success   bool   `json:"success"`
	Content   string `json:"content,omitempty"`
	URL       string `json:"url,omitempty"`
	Format    string `json:"format,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewFetch creates a fetch tool. bodyLimit caps the response size in
// bytes; zero applies the 5MB default.
func NewFetch(bodyLimit int64) *Fetch {
	if bodyLimit <= 0 {
		bodyLimit = fetchDefaultBodyLimit
	}

	toolSchema := tools.CreateToolSchema(
		"Fetch content from a URL as text, markdown, or raw HTML",
		map[string]interface{}{
			"url": tools.StringProperty("The URL to fetch content from"),
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Output format: text (plain text), markdown (converted from HTML), or html (raw HTML body)",
				"enum":        []string{"text", "markdown", "html"},
			},
			"timeout": tools.NumberProperty("Optional timeout in seconds (max 120, default 30)"),
		},
		[]string{"url", "format"},
	)

	base := tools.NewBaseTool("fetch", "Fetch content from a URL", toolSchema).
		WithCapabilities(tools.CapabilityNetwork)

	return &Fetch{
		BaseTool: base,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		bodyLimit: bodyLimit,
	}
}

// Execute performs the fetch. Transport and conversion failures are
// reported inside the response payload rather than as errors, so an agent
// loop can read them.
func (t *Fetch) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var req FetchRequest
	if err := json.Unmarshal(input, &req); err != nil {
		return fetchError("failed to parse fetch parameters: " + err.Error())
	}

	if req.URL == "" {
		return fetchError("url parameter is required")
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return fetchError("url must start with http:// or https://")
	}
	format := strings.ToLower(req.Format)
	if format != "text" && format != "markdown" && format != "html" {
		return fetchError("format must be one of: text, markdown, html")
	}

	if req.Timeout > 0 {
		timeout := time.Duration(req.Timeout) * time.Second
		if timeout > fetchMaxTimeout {
			timeout = fetchMaxTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return fetchError(fmt.Sprintf("failed to create request: %v", err))
	}
	httpReq.Header.Set("User-Agent", "csl-fetch/1.0")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fetchError(fmt.Sprintf("failed to fetch url: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fetchError(fmt.Sprintf("request failed with status code %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.bodyLimit))
	if err != nil {
		return fetchError(fmt.Sprintf("failed to read response body: %v", err))
	}
	content := string(body)
	if !utf8.ValidString(content) {
		return fetchError("response content is not valid UTF-8")
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		content, err = convertHTML(content, format)
		if err != nil {
			return fetchError(err.Error())
		}
	}

	size := int64(len(content))
	truncated := false
	if size > t.bodyLimit {
		content = content[:t.bodyLimit] + fmt.Sprintf("\n\n[content truncated to %d bytes]", t.bodyLimit)
		truncated = true
	}

	return json.Marshal(FetchResponse{
		Success:   true,
		Content:   content,
		URL:       req.URL,
		Format:    format,
		Size:      size,
		Truncated: truncated,
	})
}

// ExecuteAsync runs the fetch off the caller's path.
func (t *Fetch) ExecuteAsync(ctx context.Context, input json.RawMessage) (<-chan tools.ToolResult, error) {
	resultChan := make(chan tools.ToolResult, 1)

	go func() {
		defer close(resultChan)

		result, err := t.Execute(ctx, input)
		if err != nil {
			resultChan <- tools.ToolResult{Success: false, Error: err.Error()}
			return
		}
		resultChan <- tools.ToolResult{Success: true, Data: result}
	}()

	return resultChan, nil
}

func fetchError(msg string) (json.RawMessage, error) {
	return json.Marshal(FetchResponse{Success: false, Error: msg})
}

// convertHTML renders HTML content into the requested format.
func convertHTML(content, format string) (string, error) {
	switch format {
	case "text":
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %v", err)
		}
		return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil

	case "markdown":
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(content)
		if err != nil {
			return "", fmt.Errorf("failed to convert HTML to markdown: %v", err)
		}
		return markdown, nil

	default: // html
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %v", err)
		}
		body, err := doc.Find("body").Html()
		if err != nil {
			return "", fmt.Errorf("failed to extract body from HTML: %v", err)
		}
		if body == "" {
			return "", fmt.Errorf("no body content found in HTML")
		}
		return "<html>\n<body>\n" + body + "\n</body>\n</html>", nil
	}
}
