package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rayshop/shopmap-backend/config"
	"github.com/rayshop/shopmap-backend/internal/canvas"
	"github.com/rayshop/shopmap-backend/pkg/logger"
)

var (
	ErrAnalysisNotConfigured = errors.New("vision analysis is not configured")
	ErrAnalysisFailed        = errors.New("vision analysis failed")
)

// HotspotSuggestion is one AI-proposed hotspot. Suggestions are exactly
// that: the editor feeds accepted ones through the same placement path
// as manual clicks, nothing is written directly.
type HotspotSuggestion struct {
	Label      string   `json:"label"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Category   string   `json:"category,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// AnalysisResult is the outcome of a vision pass over a store photo.
type AnalysisResult struct {
	Summary  string              `json:"summary"`
	Hotspots []HotspotSuggestion `json:"hotspots"`
}

type VisionService interface {
	AnalyzeStoreImage(imageURL, language string) (*AnalysisResult, error)
}

type visionService struct {
	config *config.Config
	client *http.Client
}

func NewVisionService(cfg *config.Config) VisionService {
	return &visionService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Gemini API request/response structures
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// AnalyzeStoreImage asks the vision model to locate notable products in
// a store photograph and propose hotspot positions for them. Positions
// come back as percentages and are clamped into range; entries without a
// label are dropped.
func (s *visionService) AnalyzeStoreImage(imageURL, language string) (*AnalysisResult, error) {
	if s.config.Gemini.APIKey == "" {
		return nil, ErrAnalysisNotConfigured
	}

	logger.Info("Analyzing store image", map[string]interface{}{
		"language": language,
	})

	raw, err := s.callGemini(imageURL, buildAnalysisPrompt(language))
	if err != nil {
		logger.Error("Vision analysis call failed", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	result, err := parseAnalysis(raw)
	if err != nil {
		logger.Error("Failed to parse vision analysis response", err, map[string]interface{}{
			"response_bytes": len(raw),
		})
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	logger.Info("Store image analyzed", map[string]interface{}{
		"suggestions": len(result.Hotspots),
	})
	return result, nil
}

func buildAnalysisPrompt(language string) string {
	var prompt strings.Builder
	prompt.WriteString("You are looking at a photograph of the inside of a retail store.\n")
	prompt.WriteString("Identify up to 12 distinct, clearly visible products or product groups a shopper could buy.\n")
	prompt.WriteString("For each, give a short label and its position in the image as percentages of the image width (x) and height (y), measured from the top-left corner.\n")
	prompt.WriteString("Also write a one-sentence summary of what the store sells.\n")
	if language != "" {
		prompt.WriteString(fmt.Sprintf("Write all labels and the summary in this language: %s.\n", language))
	}
	prompt.WriteString("\nRespond with JSON only, matching exactly this shape:\n")
	prompt.WriteString(`{"summary": "...", "hotspots": [{"label": "...", "x": 0-100, "y": 0-100, "category": "...", "confidence": 0-1}]}`)
	return prompt.String()
}

func (s *visionService) callGemini(imageURL, prompt string) ([]byte, error) {
	imagePart, err := imagePartFor(imageURL)
	if err != nil {
		return nil, err
	}

	reqData := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{imagePart, {Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(s.config.Gemini.BaseURL, "/"), s.config.Gemini.Model)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.config.Gemini.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}
	if geminiResp.Error != nil {
		return nil, fmt.Errorf("gemini API error: %s", geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	return []byte(geminiResp.Candidates[0].Content.Parts[0].Text), nil
}

// imagePartFor builds the image part of the request: inline base64 for
// data URLs, a file reference for everything else.
func imagePartFor(imageURL string) (geminiPart, error) {
	if strings.HasPrefix(imageURL, "data:") {
		rest := strings.TrimPrefix(imageURL, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return geminiPart{}, fmt.Errorf("unsupported data URL encoding")
		}
		return geminiPart{
			InlineData: &geminiInlineData{
				MimeType: rest[:semi],
				Data:     rest[semi+len(";base64,"):],
			},
		}, nil
	}
	return geminiPart{
		FileData: &geminiFileData{
			MimeType: "image/jpeg",
			FileURI:  imageURL,
		},
	}, nil
}

func parseAnalysis(raw []byte) (*AnalysisResult, error) {
	text := strings.TrimSpace(string(raw))
	// The model occasionally wraps JSON in a markdown fence despite the
	// response mime type.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var result AnalysisResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &result); err != nil {
		return nil, err
	}

	kept := result.Hotspots[:0]
	for _, h := range result.Hotspots {
		if strings.TrimSpace(h.Label) == "" {
			continue
		}
		h.X = canvas.ClampPercent(h.X)
		h.Y = canvas.ClampPercent(h.Y)
		kept = append(kept, h)
	}
	result.Hotspots = kept
	return &result, nil
}
