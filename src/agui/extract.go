package agui

import (
	"strings"

	"github.com/username/jomkira/backend/src/models"
)

// textKeys are the field names the deep scan treats as user text.
var textKeys = map[string]bool{
	"message": true,
	"content": true,
	"query":   true,
	"text":    true,
}

// ExtractTextCandidates performs a recursive deep search for text-like
// fields anywhere in a decoded JSON body. Used as a fallback when the body
// carries no recognizable message list.
func ExtractTextCandidates(obj any) []string {
	var texts []string
	switch v := obj.(type) {
	case map[string]any:
		for k, val := range v {
			if s, ok := val.(string); ok && textKeys[k] {
				texts = append(texts, s)
			} else {
				texts = append(texts, ExtractTextCandidates(val)...)
			}
		}
	case []any:
		for _, item := range v {
			texts = append(texts, ExtractTextCandidates(item)...)
		}
	}
	return texts
}

// ExtractLastUserMessage extracts only the content of the most recent
// user-authored message. Restricting extraction to the last user message
// prevents guardrails from re-triggering on conversation history.
func ExtractLastUserMessage(body map[string]any) []string {
	messages, ok := body["messages"].([]any)
	if !ok || len(messages) == 0 {
		// No messages array; fall back to general extraction.
		return ExtractTextCandidates(body)
	}

	for i := len(messages) - 1; i >= 0; i-- {
		msg, ok := messages[i].(map[string]any)
		if !ok {
			continue
		}
		if role, _ := msg["role"].(string); role != "user" {
			continue
		}

		switch content := msg["content"].(type) {
		case string:
			return []string{content}
		case []any:
			var texts []string
			for _, item := range content {
				if part, ok := item.(map[string]any); ok {
					if text, ok := part["text"].(string); ok {
						texts = append(texts, text)
					}
				}
			}
			return texts
		}
		break
	}

	return nil
}

// ExtractLastUserImage pulls image data out of the most recent user message,
// trying the known shapes in order: the custom _image side channel, the
// GraphQL-style imageMessage field, the legacy top-level image field, and
// OpenAI-style content-array entries (including data: URIs). The first match
// wins; absence yields nil.
func ExtractLastUserImage(body map[string]any) *models.ImageData {
	messages, ok := body["messages"].([]any)
	if !ok || len(messages) == 0 {
		return nil
	}

	for i := len(messages) - 1; i >= 0; i-- {
		msg, ok := messages[i].(map[string]any)
		if !ok {
			continue
		}
		role, _ := msg["role"].(string)
		if role != "user" && role != "User" {
			continue
		}

		// 1. Custom _image side channel field
		if img, ok := msg["_image"].(map[string]any); ok {
			if data := imageFromFields(img); data != nil {
				return data
			}
		}

		// 2. GraphQL input format
		if img, ok := msg["imageMessage"].(map[string]any); ok {
			if data := imageFromFields(img); data != nil {
				return data
			}
		}

		// 3. Legacy top-level image field
		if img, ok := msg["image"].(map[string]any); ok {
			if data := imageFromFields(img); data != nil {
				return data
			}
		}

		// 4. OpenAI-style content array
		if content, ok := msg["content"].([]any); ok {
			for _, item := range content {
				part, ok := item.(map[string]any)
				if !ok {
					continue
				}
				partType, _ := part["type"].(string)
				_, hasImage := part["image"]
				if partType != "image" && partType != "image_url" && !hasImage {
					continue
				}

				var imgData any
				if v, ok := part["image"]; ok {
					imgData = v
				} else if v, ok := part["image_url"]; ok {
					imgData = v
				} else {
					imgData = part
				}

				switch v := imgData.(type) {
				case map[string]any:
					// Direct base64 bytes
					if bytes, ok := v["bytes"].(string); ok && bytes != "" {
						format, _ := v["format"].(string)
						if format == "" {
							format = "jpeg"
						}
						return &models.ImageData{Format: format, Bytes: bytes}
					}
					// Source/URL with embedded base64
					source, _ := v["source"].(string)
					if source == "" {
						source, _ = v["url"].(string)
					}
					if data := imageFromDataURI(source); data != nil {
						return data
					}
				case string:
					if data := imageFromDataURI(v); data != nil {
						return data
					}
				}
			}
		}
	}

	return nil
}

func imageFromFields(img map[string]any) *models.ImageData {
	bytes, _ := img["bytes"].(string)
	if bytes == "" {
		return nil
	}
	format, _ := img["format"].(string)
	return &models.ImageData{Format: format, Bytes: bytes}
}

// imageFromDataURI parses "data:image/<fmt>;base64,<payload>" style URIs.
func imageFromDataURI(source string) *models.ImageData {
	if source == "" || !strings.Contains(source, "base64,") {
		return nil
	}
	parts := strings.SplitN(source, ";base64,", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil
	}

	format := "jpeg"
	if idx := strings.Index(parts[0], "image/"); idx >= 0 {
		format = parts[0][idx+len("image/"):]
		if semi := strings.Index(format, ";"); semi >= 0 {
			format = format[:semi]
		}
	}
	return &models.ImageData{Format: format, Bytes: parts[1]}
}
