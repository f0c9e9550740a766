package verify

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const promptTemplate = `You are verifying a payment for a tournament registration.
The image is a screenshot of a completed UPI or bank transfer.

1. Find the UTR / transaction reference number shown in the screenshot.
2. Compare it with the claimed reference: %q. Ignore spaces and letter case.
3. Read the date of the transaction.

Set isUtrMatch to true only when the screenshot clearly shows a successful payment whose
reference equals the claimed one. When it does not, explain why in reason.
Return transactionDate as YYYY-MM-DD, or leave it empty when no date is visible.`

var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isUtrMatch":      {Type: genai.TypeBoolean},
		"reason":          {Type: genai.TypeString},
		"transactionDate": {Type: genai.TypeString},
	},
	Required: []string{"isUtrMatch"},
}

// Gemini asks a multimodal Gemini model to read the screenshot.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Verify(ctx context.Context, req Request) (Verdict, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(fmt.Sprintf(promptTemplate, req.UTR)),
			genai.NewPartFromBytes(req.Image, req.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   verdictSchema,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("gemini generate: %w", err)
	}
	return parseVerdict(resp.Text())
}
