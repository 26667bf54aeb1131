package agui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	return body
}

func TestExtractLastUserMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "string content of last user message",
			body: `{"messages":[
				{"role":"user","content":"first"},
				{"role":"assistant","content":"reply"},
				{"role":"user","content":"second"}]}`,
			want: []string{"second"},
		},
		{
			name: "content part list collects text fields",
			body: `{"messages":[{"role":"user","content":[
				{"type":"text","text":"look at"},
				{"type":"image_url","image_url":{"url":"http://x"}},
				{"type":"text","text":"this bill"}]}]}`,
			want: []string{"look at", "this bill"},
		},
		{
			name: "assistant-only history yields nothing",
			body: `{"messages":[{"role":"assistant","content":"hi"}]}`,
			want: nil,
		},
		{
			name: "no messages falls back to deep scan",
			body: `{"query":"check my balance","nested":{"text":"inner"}}`,
			want: []string{"check my balance", "inner"},
		},
		{
			name: "history is not re-extracted",
			body: `{"messages":[
				{"role":"user","content":"old malicious"},
				{"role":"user","content":"fresh"}]}`,
			want: []string{"fresh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLastUserMessage(decode(t, tt.body))
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestExtractTextCandidatesDeepScan(t *testing.T) {
	body := decode(t, `{"a":{"message":"one"},"b":[{"content":"two"},{"other":"skip"}],"text":"three"}`)
	got := ExtractTextCandidates(body)
	assert.ElementsMatch(t, []string{"one", "two", "three"}, got)
}

func TestExtractLastUserImage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantNil    bool
		wantFormat string
		wantBytes  string
	}{
		{
			name:       "custom _image side channel",
			body:       `{"messages":[{"role":"user","content":"pay this","_image":{"format":"png","bytes":"QUJD"}}]}`,
			wantFormat: "png",
			wantBytes:  "QUJD",
		},
		{
			name:       "graphql imageMessage field",
			body:       `{"messages":[{"role":"user","imageMessage":{"format":"webp","bytes":"REVG"}}]}`,
			wantFormat: "webp",
			wantBytes:  "REVG",
		},
		{
			name:       "legacy top-level image field",
			body:       `{"messages":[{"role":"user","image":{"format":"gif","bytes":"R0lG"}}]}`,
			wantFormat: "gif",
			wantBytes:  "R0lG",
		},
		{
			name: "openai style image_url data uri",
			body: `{"messages":[{"role":"user","content":[
				{"type":"image_url","image_url":{"url":"data:image/png;base64,AAAA"}}]}]}`,
			wantFormat: "png",
			wantBytes:  "AAAA",
		},
		{
			name: "image_url as bare string",
			body: `{"messages":[{"role":"user","content":[
				{"type":"image_url","image_url":"data:image/jpeg;base64,BBBB"}]}]}`,
			wantFormat: "jpeg",
			wantBytes:  "BBBB",
		},
		{
			name: "content image with direct bytes defaults to jpeg",
			body: `{"messages":[{"role":"user","content":[
				{"type":"image","image":{"bytes":"Q0ND"}}]}]}`,
			wantFormat: "jpeg",
			wantBytes:  "Q0ND",
		},
		{
			name:       "uppercase User role accepted",
			body:       `{"messages":[{"role":"User","_image":{"format":"png","bytes":"WFla"}}]}`,
			wantFormat: "png",
			wantBytes:  "WFla",
		},
		{
			name:    "no image anywhere",
			body:    `{"messages":[{"role":"user","content":"just text"}]}`,
			wantNil: true,
		},
		{
			name:    "assistant image ignored",
			body:    `{"messages":[{"role":"assistant","_image":{"format":"png","bytes":"QUJD"}}]}`,
			wantNil: true,
		},
		{
			name:    "empty body",
			body:    `{}`,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLastUserImage(decode(t, tt.body))
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantFormat, got.Format)
			assert.Equal(t, tt.wantBytes, got.Bytes)
		})
	}
}

func TestExtractLastUserImageSideChannelWinsOverContent(t *testing.T) {
	body := decode(t, `{"messages":[{"role":"user",
		"_image":{"format":"png","bytes":"SIDE"},
		"content":[{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,CONTENT"}}]}]}`)
	got := ExtractLastUserImage(body)
	require.NotNil(t, got)
	assert.Equal(t, "SIDE", got.Bytes)
}
