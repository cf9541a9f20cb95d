package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI model to use for garment classification.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

// GarmentVisionResult is the structured classification the model returns for
// a single garment photo.
type GarmentVisionResult struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Color       string   `json:"color"`
	Material    string   `json:"material"`
	Tags        []string `json:"tags"`
}

type VisionProvider interface {
	ClassifyGarment(filePath string, modelName LLMModelName) (*GarmentVisionResult, error)
}

type GoogleVisionService struct{}

func tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath string) (*genai.File, error) {
	var genFile *genai.File
	var err error
	maxUploadTimes := 3
	for i := range maxUploadTimes {
		genFile, err = client.Files.UploadFromPath(ctx, filePath, &genai.UploadFileConfig{})
		if err == nil {
			fmt.Println("File uploaded successfully:", filePath, "Attempt:", i+1)
			return genFile, nil
		}
		fmt.Printf("Error uploading file %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload file to google storage after %d attempts: %s", maxUploadTimes, filePath)
}

func (GoogleVisionService) ClassifyGarment(filePath string, modelName LLMModelName) (*GarmentVisionResult, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %v", err)
	}

	genFile, err := tryUploadGoogleStorage(ctx, client, filePath)
	if err != nil {
		fmt.Println("Error uploading garment file:", filePath, err)
		return nil, fmt.Errorf("error uploading file %s: %v", filePath, err)
	}

	parts := []*genai.Part{
		{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		},
		{
			Text: "Classify the single clothing item in the image and return the result as JSON.",
		},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  2000,
		Temperature:      floatPointer(0.2),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert fashion merchandiser. Analyze the garment photo and return JSON with:
- name: short human product name, e.g. "Navy Wool Blazer"
- category: exactly one of tops, bottoms, outerwear, dress, shoes, accessories
- subcategory: a single lowercase word like tshirt, shirt, jeans, blazer, sneakers, sweater
- color: the single dominant color as one lowercase word
- material: the most likely main fabric as one lowercase word, e.g. cotton, denim, wool, leather
- tags: up to five lowercase style tags like casual, formal, summer, trendy
If the image does not contain a clothing item, set category to "other" and leave the rest empty.`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"name":        {Type: "string"},
				"category":    {Type: "string"},
				"subcategory": {Type: "string"},
				"color":       {Type: "string"},
				"material":    {Type: "string"},
				"tags":        {Type: "array", Items: &genai.Schema{Type: "string"}},
			},
			Required: []string{"name", "category", "color"},
		},
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s %s", filePath, result.PromptFeedback.BlockReasonMessage)
	}

	if result.UsageMetadata != nil {
		fmt.Println("Input token count:", result.UsageMetadata.PromptTokenCount)
		fmt.Println("Output token count:", result.UsageMetadata.CandidatesTokenCount)
	}

	var visionResult GarmentVisionResult
	if err := json.Unmarshal([]byte(result.Text()), &visionResult); err != nil {
		fmt.Println("Error parsing classification JSON:", err, result.Text())
		return nil, fmt.Errorf("error parsing classification response: %v", err)
	}

	return &visionResult, nil
}
