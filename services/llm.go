package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI backend to use for the client.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
	Flash25Image
)

// The Stringer interface for Backend.
func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash25Image:
		return "gemini-2.5-flash-image-preview"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func Int32Pointer(i int32) *int32 {
	return &i
}

type LLMResponse struct {
	Response           string   `json:"response"`
	Images             [][]byte `json:"images,omitempty"`
	InputTokenCount    int32    `json:"input_token_count"`
	Thoughts           string   `json:"thoughts"`
	ThoughtsTokenCount int32    `json:"thoughts_token_count"`
	OutputTokenCount   int32    `json:"output_token_count"`
	TotalTokenCount    int32    `json:"total_token_count"`
	IsTest             bool     `json:"is_test"`
}

type LLMProcessor interface {
	ProcessClothing(filePath string, modelName LLMModelName) (*LLMResponse, error)
	ProcessAvatarTask(personAvatarPath string, modelName LLMModelName) (*LLMResponse, error)
	GenerateTryOn(personAvatarPath string, filePaths []string, modelName LLMModelName) (*LLMResponse, error)
	SuggestOutfit(closetSummary string, occasion string, weatherSummary string, modelName LLMModelName) (*LLMResponse, error)
}

// ClothingAnalysisResponse is the structured vision analysis of one garment
// photo, parsed from the JSON the model is constrained to return.
type ClothingAnalysisResponse struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Colors         []string       `json:"colors"`
	Styles         []string       `json:"styles"`
	Formality      int            `json:"formality"`
	WarmthLevel    int            `json:"warmth_level"`
	IsWaterproof   bool           `json:"is_waterproof"`
	OccasionScores map[string]int `json:"occasion_scores"`
}

type ResponseWithThoughts struct {
	Thoughts string `json:"thoughts"`
	Text     string `json:"text"`
}

type GoogleLLMProcessor struct{}

func tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath string, newName *string) (*genai.File, error) {
	var genFile *genai.File
	var err error
	maxUploadTimes := 3
	for i := range maxUploadTimes {
		config := &genai.UploadFileConfig{}
		if newName != nil {
			config = &genai.UploadFileConfig{
				Name: *newName,
			}
		}

		genFile, err = client.Files.UploadFromPath(ctx, filePath, config)
		if err == nil {

			fmt.Println("File uploaded successfully:", filePath, "Attempt:", i+1)
			return genFile, nil
		}
		fmt.Printf("Error uploading file %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload file to google storage /after %d attempts: %s", maxUploadTimes, filePath)
}

func GetAllInlineImages(result *genai.GenerateContentResponse) ([][]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("empty response")
	}

	var allImageData [][]byte

	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}

		for _, part := range cand.Content.Parts {
			inlineData := part.InlineData
			if inlineData != nil {
				if strings.HasPrefix(inlineData.MIMEType, "image/") {
					if len(inlineData.Data) > 0 {
						allImageData = append(allImageData, inlineData.Data)
					}
				}
			}
		}
	}

	if len(allImageData) == 0 {
		return nil, nil
	}

	return allImageData, nil
}

func GetFirstCandidateTextWithThoughts(result *genai.GenerateContentResponse) (*ResponseWithThoughts, error) {
	var thinkingContent string
	for _, c := range result.Candidates {
		fmt.Println("Finish reason: ", c.FinishReason, " Finish message: ", c.FinishMessage)

		if len(c.SafetyRatings) > 0 {
			fmt.Println("[Safety] Safety ratings present:", len(c.SafetyRatings))
			for _, rating := range c.SafetyRatings {
				fmt.Println("[Safety] rating:", rating.Category, "Score:", rating.Probability, "Severity score:", rating.SeverityScore, " Blocked:", rating.Blocked)
				if rating.Blocked {
					return nil, fmt.Errorf("content violation: Couldn't analyze the image, because it contains %s,", rating.Category)
				}
			}
		}
		for _, part := range c.Content.Parts {
			if part.Thought && part.Text != "" {
				if result.UsageMetadata != nil && result.UsageMetadata.ThoughtsTokenCount > 25000 {
					fmt.Println("Warning: Thought content is too long:", result.UsageMetadata.ThoughtsTokenCount, part.Text)
				}
				thinkingContent = part.Text
				continue
			}

		}
	}
	return &ResponseWithThoughts{
		Thoughts: thinkingContent,
		Text:     result.Text(),
	}, nil
}

func usageCounts(result *genai.GenerateContentResponse) (int32, int32, int32, int32) {
	if result.UsageMetadata == nil {
		fmt.Println("UsageMetadata is nil!")
		return 0, 0, 0, 0
	}
	inputTokenCount := result.UsageMetadata.PromptTokenCount
	thoughtsTokenCount := result.UsageMetadata.ThoughtsTokenCount
	outputTokenCount := result.UsageMetadata.CandidatesTokenCount
	totalTokenCount := result.UsageMetadata.TotalTokenCount
	fmt.Println("Input token count:", inputTokenCount)
	fmt.Println("Output token count:", outputTokenCount)
	fmt.Println("Thoughts token count:", thoughtsTokenCount)
	fmt.Println("Total token count:", totalTokenCount)
	return inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount
}

var dashAlphaRule = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// ProcessClothing analyzes a single garment photo and returns the structured
// annotation JSON used by the recommendation engine.
func (GoogleLLMProcessor) ProcessClothing(filePath string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal(err)
	}

	fileName := filepath.Base(filePath)
	sanitizedFileName := dashAlphaRule.ReplaceAllString(strings.ReplaceAll(fileName, ".", "-"), "")
	genFile, err := tryUploadGoogleStorage(ctx, client, filePath, &sanitizedFileName)
	if err != nil {
		fmt.Println("Error uploading file:", filePath, err)
		return nil, fmt.Errorf("error uploading file to google storage %s: %v", filePath, err)
	}

	parts := []*genai.Part{
		{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  10000,
		Temperature:      floatPointer(0.4),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert fashion stylist analyzing a single clothing item photo for a digital wardrobe. Follow the below instructions. Do not deviate from these requirements. Return the response in JSON format with the specified fields.
1. **name**: A short shopping-style item name, e.g. "White Oxford Shirt".
2. **description**: One or two sentences describing the item, mentioning sleeve length for tops ("long sleeve" or "short sleeve") and leg length for bottoms ("shorts" or "long pants").
3. **category**: Exactly one of: top, bottom, shoes, outerwear, accessory.
4. **colors**: The dominant colors as simple lowercase names (e.g. "black", "navy", "beige"), most dominant first, at most four.
5. **styles**: Applicable style tags from exactly this set: casual, formal, streetwear, athletic, preppy.
6. **formality**: 1 for casual, 2 for business-casual, 3 for formal.
7. **warmth_level**: 1 (very light) to 5 (very warm).
8. **is_waterproof**: true only for rain-ready items.
9. **occasion_scores**: Suitability 0-10 for each of: work, class, gym, casual, social, formal, date, interview.
If the image does not contain a recognizable clothing item, return "UNKNOWN_ITEM" as the name and keep other fields empty.`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"name": {
					Type: "string",
				},
				"description": {
					Type: "string",
				},
				"category": {
					Type: "string",
				},
				"colors": {
					Type:  "array",
					Items: &genai.Schema{Type: "string"},
				},
				"styles": {
					Type:  "array",
					Items: &genai.Schema{Type: "string"},
				},
				"formality": {
					Type: "integer",
				},
				"warmth_level": {
					Type: "integer",
				},
				"is_waterproof": {
					Type: "boolean",
				},
				"occasion_scores": {
					Type: "object",
					Properties: map[string]*genai.Schema{
						"work":      {Type: "integer"},
						"class":     {Type: "integer"},
						"gym":       {Type: "integer"},
						"casual":    {Type: "integer"},
						"social":    {Type: "integer"},
						"formal":    {Type: "integer"},
						"date":      {Type: "integer"},
						"interview": {Type: "integer"},
					},
				},
			},
			Required: []string{"name", "description", "category", "colors", "formality"},
		},
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}
	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)
	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		if result.PromptFeedback != nil {

			fmt.Println(result.PromptFeedback.BlockReason)
			fmt.Println(result.PromptFeedback.BlockReasonMessage)
			fmt.Println(result.PromptFeedback.SafetyRatings)
			return nil, fmt.Errorf("content violation: %s ", result.PromptFeedback.BlockReasonMessage)
		}
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}
	return &LLMResponse{
		Response:           llmResponseText.Text,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}

func (GoogleLLMProcessor) ProcessAvatarTask(personAvatarPath string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal(err)
	}

	// This file must exist in the same folder as your executable.
	const whiteCanvasPath = "./white_540x960.png"
	_, err = os.Open(whiteCanvasPath)
	if err != nil {
		return nil, err
	}
	var genFiles []*genai.File

	// 1. Upload the user's avatar
	personAvatarFile, err := tryUploadGoogleStorage(ctx, client, personAvatarPath, nil)
	if err != nil {
		fmt.Println("Error uploading person avatar file:", personAvatarPath, err)
		return nil, fmt.Errorf("error uploading person avatar file %s: %v", personAvatarPath, err)
	}
	genFiles = append(genFiles, personAvatarFile)
	fmt.Println("Successfully uploaded person avatar:", personAvatarPath)

	whiteCanvasFile, err := tryUploadGoogleStorage(ctx, client, whiteCanvasPath, nil)
	if err != nil {
		fmt.Println("Error uploading white canvas file:", whiteCanvasPath, err)
		return nil, fmt.Errorf("error uploading white canvas file %s: %v", whiteCanvasPath, err)
	}
	genFiles = append(genFiles, whiteCanvasFile)
	fmt.Println("Successfully uploaded white canvas:", whiteCanvasPath)

	// [Image1, Image2, Text]
	var parts []*genai.Part

	// First, add all the image file parts.
	for _, genFile := range genFiles {
		fmt.Println("Adding image part for:", genFile.URI)
		parts = append(parts, &genai.Part{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		})
	}

	// Second, add the text prompt part at the end.
	// The prompt refers to the "second image" as the background.
	parts = append(parts, &genai.Part{
		Text: "Generate a fashion-style full-body commercial head to toe photographer edited portrait of the person from first image by keeping his identity, personality, facial identity(100% same) and use solid, flat, unlit, white second image as a new background for person image which will be chromakey. keep user facial identity exactly same, unchanged. Person should be in center and should take 70% of the image area. By keeping same personality, identity and exact same body/hand/head/leg sizes - generate the straight facing the camera and relaxed, coolest, confident pose with neutral white shirt, white trousers and white neutral shoes. The lighting on user should be natural, soft and professional, high-resolution and opening the color of person. Remove items from hands, position neutrally with slight smile. Clean all background elements, watermarks, other people/objects. If no person detected: return \"NO_PERSON\", otherwise output only full-body person, with on flat, consistent, all white second image background. Do not apply slight grayish gradients, keep all edges white. Aspect ratio 9:16 portrait size",
	})

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		MaxOutputTokens: 50000,
		Temperature:     floatPointer(1),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `If no person detected in the image return NO_PERSON as response. Analyze the image, and provide only an full body avatar.`},
			},
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		fmt.Println(result.PromptFeedback.SafetyRatings)
		return nil, fmt.Errorf("content violation: %s %s ", personAvatarPath, result.PromptFeedback.BlockReasonMessage)
	}

	fmt.Println("Number of candidates received:", len(result.Candidates))
	llmResponseImagesBytes, err := GetAllInlineImages(result)
	if err != nil {
		fmt.Println("Error getting first candidate image: ", err)
		fmt.Println(result)
		return nil, fmt.Errorf("error getting first candidate image: %v", err)
	}

	fmt.Println("Number of images extracted:", len(llmResponseImagesBytes))
	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}

	return &LLMResponse{
		Response:           llmResponseText.Text,
		Images:             llmResponseImagesBytes,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}

func (GoogleLLMProcessor) GenerateTryOn(personAvatarPath string, filePaths []string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal(err)
	}

	var genFiles []*genai.File

	genFile, err := tryUploadGoogleStorage(ctx, client, personAvatarPath, nil)
	if err != nil {
		fmt.Println("Error uploading person avatar file:", personAvatarPath, err)
		return nil, fmt.Errorf("error uploading file %s: %v", personAvatarPath, err)
	}
	genFiles = append(genFiles, genFile)
	// Upload each garment file and get the URI
	for i, filePath := range filePaths {
		if filePath == "" {
			fmt.Println("File path empty in index:", i)
			continue
		}
		// try to upload couple of times if err, default 3
		genFile, err := tryUploadGoogleStorage(ctx, client, filePath, nil)
		if err != nil {
			fmt.Println("Error uploading file:", filePath, err)
			return nil, fmt.Errorf("error uploading file %s: %v", filePath, err)
		}
		genFiles = append(genFiles, genFile)
	}

	var parts []*genai.Part
	for i, genFile := range genFiles {
		fmt.Println("File path for image parse:", i, " ", genFile.URI, genFile.MIMEType)
		parts = append(parts, &genai.Part{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		})
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		CandidateCount:  1,
		MaxOutputTokens: 50000,
		Temperature:     floatPointer(1),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `Edit first person image into a fashion-style full-body commercial head to toe photographer edited by keeping his identity, personality, placement in image in center, facial identity(100% same) and use the same solid, flat, unlit, white first image background including ratio. Take the all images after first one and let the same exact person from the first image wear it. For missing clothing items, keep original ones that user wears. keep user facial identity exactly same, unchanged. By keeping same personality, identity and exact same body/hand/head/leg sizes - generate the straight facing the camera and relaxed, coolest, confident pose. The lighting on user should be natural, soft and professional, high-resolution and opening the color of person. Remove items from hands, position neutrally with slight smile. Clean all background elements, watermarks, other people/objects. If no person detected: return "NO_PERSON", otherwise output only full-body person, with on flat, consistent, all white background. Do not apply slight grayish gradients, keep all edges white. Aspect ratio 9:16 portrait size`},
			},
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}
	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)
	if result.PromptFeedback != nil {

		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		fmt.Println(result.PromptFeedback.SafetyRatings)
		return nil, fmt.Errorf("content violation: %s %s ", filePaths[0], result.PromptFeedback.BlockReasonMessage)
	}
	fmt.Println("Number of candidates received:", len(result.Candidates))
	llmResponseImagesBytes, err := GetAllInlineImages(result)
	if err != nil {
		fmt.Println("Error getting first candidate image: ", err)

		fmt.Println(result)

		return nil, fmt.Errorf("error getting first candidate image: %v", err)
	}
	fmt.Println("Number of images extracted:", len(llmResponseImagesBytes))
	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)

		fmt.Println(result.Candidates)
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}
	return &LLMResponse{
		Response:           llmResponseText.Text,
		Images:             llmResponseImagesBytes,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil

}

// SuggestOutfit asks the model to compose an outfit from a text summary of
// the closet. This is the AI recommendation path that complements the local
// rule-based engine; callers race the two and fall back to the local result.
func (GoogleLLMProcessor) SuggestOutfit(closetSummary string, occasion string, weatherSummary string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatal(err)
	}

	prompt := fmt.Sprintf("Closet items, one per line as \"id | category | name | colors | styles\":\n%s\n", closetSummary)
	if occasion != "" {
		prompt += fmt.Sprintf("Target occasion: %s\n", occasion)
	}
	if weatherSummary != "" {
		prompt += fmt.Sprintf("Weather: %s\n", weatherSummary)
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  10000,
		Temperature:      floatPointer(0.8),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert personal stylist. Pick exactly one top, one bottom and one pair of shoes from the provided closet items (optionally one outerwear and one accessory) that make the best outfit for the given occasion and weather. Use only ids that appear in the list. Return the response in JSON format with the specified fields.`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"top_id":       {Type: "integer"},
				"bottom_id":    {Type: "integer"},
				"shoes_id":     {Type: "integer"},
				"outerwear_id": {Type: "integer"},
				"accessory_id": {Type: "integer"},
				"rationale":    {Type: "string"},
			},
			Required: []string{"top_id", "bottom_id", "shoes_id", "rationale"},
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}
	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)
	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		if result.PromptFeedback != nil {
			fmt.Println(result.PromptFeedback.BlockReason)
			fmt.Println(result.PromptFeedback.BlockReasonMessage)
			return nil, fmt.Errorf("content violation: %s ", result.PromptFeedback.BlockReasonMessage)
		}
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}
	return &LLMResponse{
		Response:           llmResponseText.Text,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}

// OutfitSuggestionResponse is the parsed SuggestOutfit JSON payload.
type OutfitSuggestionResponse struct {
	TopID       uint   `json:"top_id"`
	BottomID    uint   `json:"bottom_id"`
	ShoesID     uint   `json:"shoes_id"`
	OuterwearID *uint  `json:"outerwear_id"`
	AccessoryID *uint  `json:"accessory_id"`
	Rationale   string `json:"rationale"`
}
